package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/piwi3910/sheetnest/internal/engine"
	"github.com/piwi3910/sheetnest/internal/export"
	"github.com/piwi3910/sheetnest/internal/importer"
	"github.com/piwi3910/sheetnest/internal/model"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error  string         `json:"error"`
	Issues []engine.Issue `json:"issues,omitempty"`
}

// CompareResponse is the body of a successful /compare reply.
type CompareResponse struct {
	Results []engine.ComparisonResult `json:"results"`
	Best    int                       `json:"best"`
}

// readBody reads the request body up to the configured limit.
func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(c, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		s.fail(c, http.StatusBadRequest, err)
		return nil, false
	}
	return data, true
}

// readRequest decodes the body, merging the server's sheet sizes and
// settings under whatever the request carries.
func (s *Server) readRequest(c *gin.Context) (importer.NestRequest, bool) {
	data, ok := s.readBody(c)
	if !ok {
		return importer.NestRequest{}, false
	}

	req, err := importer.DecodeNestRequest(bytes.NewReader(data), s.cfg.Nest)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return importer.NestRequest{}, false
	}

	sizes := make(model.SheetSizeConfig, len(s.sizes)+len(req.SheetSizes))
	for m, sz := range s.sizes {
		sizes[m] = sz
	}
	for m, sz := range req.SheetSizes {
		sizes[m] = sz
	}
	req.SheetSizes = sizes
	return req, true
}

// nest runs the engine for the request and writes an error reply on failure.
func (s *Server) nest(c *gin.Context) (model.NestResult, model.NestSettings, bool) {
	req, ok := s.readRequest(c)
	if !ok {
		return model.NestResult{}, model.NestSettings{}, false
	}
	result, err := s.nester(req.Settings).Nest(c.Request.Context(), req.Parts, req.SheetSizes)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return model.NestResult{}, model.NestSettings{}, false
	}
	return result, req.Settings, true
}

func (s *Server) handleNest(c *gin.Context) {
	result, _, ok := s.nest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleNestPDF(c *gin.Context) {
	result, settings, ok := s.nest(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, result, settings); err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="layout.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (s *Server) handleNestXLSX(c *gin.Context) {
	result, _, ok := s.nest(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCutList(&buf, result); err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="cutlist.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleNestPNG renders one sheet, chosen by the ?sheet= ID (default 1).
func (s *Server) handleNestPNG(c *gin.Context) {
	id, err := strconv.Atoi(c.DefaultQuery("sheet", "1"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("invalid sheet id %q", c.Query("sheet")))
		return
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(export.DefaultPreviewSize)))
	if err != nil || size <= 0 || size > 4*export.DefaultPreviewSize {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("invalid preview size %q", c.Query("size")))
		return
	}

	result, _, ok := s.nest(c)
	if !ok {
		return
	}
	for _, sheet := range result.Sheets {
		if sheet.ID != id {
			continue
		}
		var buf bytes.Buffer
		if err := export.RenderSheetPNG(&buf, sheet, size); err != nil {
			s.fail(c, http.StatusInternalServerError, err)
			return
		}
		c.Data(http.StatusOK, "image/png", buf.Bytes())
		return
	}
	s.fail(c, http.StatusNotFound, fmt.Errorf("result has no sheet %d", id))
}

func (s *Server) handleNestChart(c *gin.Context) {
	result, settings, ok := s.nest(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.RenderEfficiencyChart(&buf, result, settings); err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// handleNestUpload nests a cut list sent as an Excel workbook body, using
// the server's sheet sizes and settings.
func (s *Server) handleNestUpload(c *gin.Context) {
	data, ok := s.readBody(c)
	if !ok {
		return
	}
	res := importer.ImportExcelFromReader(bytes.NewReader(data))
	if !res.OK() {
		resp := ErrorResponse{Error: "workbook contains no usable parts"}
		for i, msg := range res.Errors {
			resp.Issues = append(resp.Issues, engine.Issue{Index: -1, Name: fmt.Sprintf("row error %d", i+1), Reasons: []string{msg}})
		}
		_ = c.Error(errors.New(resp.Error))
		c.AbortWithStatusJSON(http.StatusBadRequest, resp)
		return
	}

	result, err := s.nester(s.cfg.Nest).Nest(c.Request.Context(), res.Parts, s.sizes)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCompare(c *gin.Context) {
	req, ok := s.readRequest(c)
	if !ok {
		return
	}
	scenarios := engine.BuildDefaultScenarios(req.Settings, req.SheetSizes)
	results, err := engine.CompareScenarios(c.Request.Context(), scenarios, req.Parts, engine.WithLogger(s.logger))
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, CompareResponse{Results: results, Best: engine.BestScenario(results)})
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	resp := ErrorResponse{Error: err.Error()}
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		resp.Issues = verr.Issues
	}
	c.AbortWithStatusJSON(status, resp)
}

// statusFor maps engine and export errors to HTTP status codes.
func statusFor(err error) int {
	var verr *engine.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, engine.ErrNothingToPack):
		return http.StatusBadRequest
	case errors.Is(err, export.ErrNoSheets):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
