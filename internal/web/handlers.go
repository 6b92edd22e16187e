package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/DataForge/internal/core"
	"github.com/JonMunkholm/DataForge/internal/export"
	"github.com/JonMunkholm/DataForge/internal/logging"
)

// maxJSONBody bounds request bodies that are not file uploads.
const maxJSONBody = 1 << 20

// multipartOverhead is allowed on top of the template size limit for the
// form boundaries and headers.
const multipartOverhead = 64 << 10

// defaultPreviewRows is used when a preview request omits rowCount.
const defaultPreviewRows = 10

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest(err)
	}
	return nil
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "healthy", "service": ServiceName})
}

// handleStatus reports generation capacity and whether AI is available.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"generation": s.service.LimiterStatus(),
		"aiEnabled":  s.service.AIEnabled(),
		"maxRows":    s.service.Generator().MaxRows(),
	})
}

// handleTypes lists the supported data types.
func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, core.DataTypes())
}

// handleUpload infers a schema from a multipart "file" upload.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Parser.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.fail(w, r, badRequestf("file too large: the limit is %d bytes", maxSize))
			return
		}
		s.fail(w, r, badRequest(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, badRequestf("no file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		s.fail(w, r, badRequest(err))
		return
	}

	fields, err := s.service.ParseTemplate(r.Context(), data, header.Filename)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"fields": fields})
}

type inferRequest struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// handleInfer types a single column from its name and sample values.
func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	var req inferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]core.DataType{"type": core.InferTypeFromStrings(req.Name, req.Values)})
}

// handleGenerateSchema asks the AI provider for fields matching a prompt.
func (s *Server) handleGenerateSchema(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	fields, err := s.service.GenerateSchema(r.Context(), req.Prompt)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"fields": fields})
}

type generateRequest struct {
	Fields   []core.Field `json:"fields"`
	RowCount *int         `json:"rowCount"`
	Format   string       `json:"format"`
}

func (req generateRequest) rows(def int) int {
	if req.RowCount == nil {
		return def
	}
	return *req.RowCount
}

// handleGeneratePreview returns at most ten sample rows. Rows are written
// with the JSON exporter so keys keep the field order.
func (s *Server) handleGeneratePreview(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	table, err := s.service.Preview(r.Context(), req.Fields, req.rows(defaultPreviewRows))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, export.JSON, table); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]json.RawMessage{"data": buf.Bytes()})
}

// handleExport generates the full table and returns it as an attachment.
// The table is serialized before any header is written so failures still
// produce an error response.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.RowCount == nil {
		s.fail(w, r, badRequestf("row count must be between 1 and %d", s.service.Generator().MaxRows()))
		return
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		s.fail(w, r, &requestError{msg: err.Error()})
		return
	}

	log := logging.WithFields(r.Context(), "rows", *req.RowCount, "fields", len(req.Fields), "format", format)

	var buf bytes.Buffer
	if err := s.service.Export(r.Context(), req.Fields, *req.RowCount, format, &buf); err != nil {
		s.fail(w, r, err)
		return
	}
	log.Info("export generated", "bytes", buf.Len())

	filename := export.Filename(format, s.now())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		log.Error("write export", "error", err)
	}
}
