package ui

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"sitepulse/domain/progress"
	"sitepulse/models"
	"sitepulse/ports"
)

// handlePredict renders the CSV upload screen.
func (s *Server) handlePredict(c *gin.Context) {
	s.renderTemplate(c, "predict.html", gin.H{
		"MaxBytes": s.cfg.MaxCSVBytes,
	})
}

// handlePredictSubmit runs the import pipeline: size ceiling, local parse,
// backend prediction, report caching. The stage ticker runs only while the
// predict call is in flight and stops on every exit path.
func (s *Server) handlePredictSubmit(c *gin.Context) {
	session := currentSession(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxCSVBytes+4096)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		s.renderPredictError(c, http.StatusBadRequest, "Please choose a CSV file to upload.")
		return
	}
	defer file.Close()

	if header.Size > s.cfg.MaxCSVBytes {
		s.renderPredictError(c, http.StatusRequestEntityTooLarge, "That file is too large to process.")
		return
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		s.renderPredictError(c, http.StatusBadRequest, "Only .csv files are supported.")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxCSVBytes+1))
	if err != nil {
		s.renderPredictError(c, http.StatusBadRequest, "Could not read the uploaded file.")
		return
	}
	if int64(len(data)) > s.cfg.MaxCSVBytes {
		s.renderPredictError(c, http.StatusRequestEntityTooLarge, "That file is too large to process.")
		return
	}

	// Parse locally before spending a backend call: a file that cannot
	// chart is reported immediately.
	if _, err := progress.Parse(string(data)); err != nil {
		s.renderPredictError(c, http.StatusBadRequest, backendMessage(err, "The CSV file could not be parsed."))
		return
	}

	s.stages.Start(session.ID)
	defer s.stages.Stop(session.ID)

	result, err := s.api.Predict(c.Request.Context(), session.AccessToken, header.Filename, bytes.NewReader(data))
	if err != nil {
		if s.failUnauthorized(c, err) {
			return
		}
		log.Printf("[Predict] Backend call failed: %v", err)
		s.renderPredictError(c, http.StatusBadGateway, backendMessage(err, "Failed to process CSV file."))
		return
	}

	report := &models.CachedReport{
		SessionID:  session.ID,
		Prediction: result.Prediction,
		CSVData:    string(data),
		CreatedAt:  time.Now(),
	}
	if err := s.store.PutReport(c.Request.Context(), report, s.cfg.ReportTTL); err != nil {
		log.Printf("[Predict] Failed to cache report: %v", err)
	}
	c.Redirect(http.StatusFound, "/import-report")
}

func (s *Server) renderPredictError(c *gin.Context, status int, message string) {
	c.Status(status)
	s.renderTemplate(c, "predict.html", gin.H{
		"Error":    message,
		"MaxBytes": s.cfg.MaxCSVBytes,
	})
}

// handlePredictProgress reports the current cosmetic stage for the visitor's
// in-flight prediction.
func (s *Server) handlePredictProgress(c *gin.Context) {
	session := currentSession(c)
	stage, active := s.stages.Current(session.ID)
	c.JSON(http.StatusOK, gin.H{"stage": stage, "active": active})
}

// handleImportReport reproduces the report from the cached prediction and
// CSV. A visitor with nothing cached has no report to show and is sent back
// to the start.
func (s *Server) handleImportReport(c *gin.Context) {
	session := currentSession(c)

	cached, err := s.store.GetReport(c.Request.Context(), session.ID)
	if err != nil {
		log.Printf("[ImportReport] Store read failed: %v", err)
	}
	if cached == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	data := gin.H{
		"Prediction": renderMarkdown(cached.Prediction),
	}

	rows, err := progress.Parse(cached.CSVData)
	if err != nil {
		data["ParseError"] = "The cached CSV could not be charted: " + err.Error()
	} else {
		series := progress.Series(rows)
		data["Series"] = chartJSON(series)
		data["HasSeries"] = len(series) > 0
		data["Summary"] = progress.Summarize(rows)
	}
	s.renderTemplate(c, "report.html", data)
}

// handleExportReport streams the cached report as a PDF or XLSX download.
func (s *Server) handleExportReport(c *gin.Context) {
	session := currentSession(c)

	format := c.Query("format")
	exporter, ok := s.exporters[format]
	if !ok {
		c.String(http.StatusBadRequest, "unknown export format %q", format)
		return
	}

	cached, err := s.store.GetReport(c.Request.Context(), session.ID)
	if err != nil || cached == nil {
		c.Redirect(http.StatusFound, "/import-report")
		return
	}

	report := ports.Report{
		Title:      "Construction Progress Report",
		Prediction: cached.Prediction,
	}
	if rows, err := progress.Parse(cached.CSVData); err == nil {
		report.Series = progress.Series(rows)
		report.Summary = progress.Summarize(rows)
	}

	var buf bytes.Buffer
	contentType, filename, err := exporter.Export(report, &buf)
	if err != nil {
		log.Printf("[Export] Failed to build %s document: %v", format, err)
		c.String(http.StatusInternalServerError, "export failed")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// handleRecents lists prior prediction runs, newest first, each with its own
// chart.
func (s *Server) handleRecents(c *gin.Context) {
	session := currentSession(c)

	recents, err := s.api.RecentImports(c.Request.Context(), session.AccessToken)
	if err != nil {
		if s.failUnauthorized(c, err) {
			return
		}
		log.Printf("[Recents] Fetch failed: %v", err)
		s.renderTemplate(c, "recents.html", gin.H{
			"Error": backendMessage(err, "Could not load recent imports."),
		})
		return
	}

	sort.SliceStable(recents, func(i, j int) bool {
		return recents[i].When().After(recents[j].When())
	})

	type recentView struct {
		Index      int
		Prediction template.HTML
		CreatedAt  string
		Series     template.JS
	}
	views := make([]recentView, 0, len(recents))
	for i, r := range recents {
		series, _, err := seriesFromChartData(r.ChartData)
		if err != nil {
			continue
		}
		views = append(views, recentView{
			Index:      i,
			Prediction: renderMarkdown(r.Prediction),
			CreatedAt:  r.CreatedAt,
			Series:     chartJSON(series),
		})
	}
	s.renderTemplate(c, "recents.html", gin.H{"Recents": views})
}

// handleRecentView renders one prior run with the full report layout.
func (s *Server) handleRecentView(c *gin.Context) {
	session := currentSession(c)

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.Redirect(http.StatusFound, "/recents")
		return
	}

	recents, err := s.api.RecentImports(c.Request.Context(), session.AccessToken)
	if err != nil {
		if s.failUnauthorized(c, err) {
			return
		}
		c.Redirect(http.StatusFound, "/recents")
		return
	}
	sort.SliceStable(recents, func(i, j int) bool {
		return recents[i].When().After(recents[j].When())
	})
	if index >= len(recents) {
		c.Redirect(http.StatusFound, "/recents")
		return
	}

	recent := recents[index]
	data := gin.H{
		"Prediction": renderMarkdown(recent.Prediction),
	}
	if series, summary, err := seriesFromChartData(recent.ChartData); err == nil {
		data["Series"] = chartJSON(series)
		data["HasSeries"] = len(series) > 0
		data["Summary"] = summary
	}
	s.renderTemplate(c, "report.html", data)
}

// renderMarkdown converts the backend's prediction text to HTML.
func renderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return template.HTML(markdown.ToHTML([]byte(md), p, renderer))
}

// chartJSON serializes a series for the chart script.
func chartJSON(series []progress.Point) template.JS {
	data, err := json.Marshal(series)
	if err != nil {
		return template.JS("[]")
	}
	return template.JS(data)
}

// seriesFromChartData adapts backend-stored chart points to the domain
// series and summary shapes.
func seriesFromChartData(points []models.ChartPoint) ([]progress.Point, progress.Summary, error) {
	rows := make([]progress.Row, 0, len(points))
	series := make([]progress.Point, 0, len(points))
	for _, p := range points {
		rows = append(rows, progress.Row{
			Percent:     p.ActualProgress,
			DaysElapsed: p.DaysElapsed,
		})
		series = append(series, progress.Point{
			DaysElapsed:     p.DaysElapsed,
			PlannedProgress: p.PlannedProgress,
			ActualProgress:  p.ActualProgress,
		})
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].DaysElapsed < series[j].DaysElapsed
	})
	return series, progress.Summarize(rows), nil
}
