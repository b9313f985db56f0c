package server

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nao1215/csvapi"
	"github.com/nao1215/csvapi/domain/model"
	"github.com/nao1215/csvapi/engine"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

type createResponse struct {
	Name   string       `json:"name"`
	Rows   int64        `json:"rows"`
	Schema model.Schema `json:"schema"`
	Table  string       `json:"table"`
}

type detailResponse struct {
	Name      string       `json:"name"`
	Rows      int64        `json:"rows"`
	Schema    model.Schema `json:"schema"`
	CreatedAt time.Time    `json:"created_at"`
	Sample    []engine.Row `json:"sample"`
}

type rowsMeta struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

type rowsResponse struct {
	Data []engine.Row `json:"data"`
	Meta rowsMeta     `json:"meta"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"name": Name, "version": Version})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		s.log.Warnw("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "good"})
}

func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, codeInvalidParameter, "expected a multipart/form-data upload: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidParameter, "the file field is required")
		return
	}
	defer file.Close()

	ds, err := s.svc.CreateDataset(r.Context(), csvapi.Upload{
		Name:     r.FormValue("name"),
		FileName: header.Filename,
		Body:     file,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, createResponse{
		Name:   ds.Name,
		Rows:   ds.RowCount,
		Schema: ds.Schema,
		Table:  ds.PhysicalTable,
	})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListDatasets(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	detail, err := s.svc.GetDataset(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailResponse{
		Name:      detail.Name,
		Rows:      detail.RowCount,
		Schema:    detail.Schema,
		CreatedAt: detail.CreatedAt,
		Sample:    detail.Sample,
	})
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.svc.DeleteDataset(r.Context(), name); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("dataset %q deleted", name)})
}

func (s *Server) handleQueryRows(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.QueryRows(r.Context(), mux.Vars(r)["name"], r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rowsResponse{
		Data: res.Rows,
		Meta: rowsMeta{Limit: res.Limit, Offset: res.Offset, Total: res.Total},
	})
}

// handleExport streams a dataset as a file download. Once the first byte
// is written the status can no longer change, so failures after that
// point are only logged.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	x, err := s.svc.PrepareExport(r.Context(), mux.Vars(r)["name"], r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", x.Options.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": x.FileName()}))
	w.WriteHeader(http.StatusOK)

	n, err := x.WriteTo(r.Context(), w)
	if err != nil {
		s.log.Errorw("export failed", "dataset", x.Dataset.Name, "rows", n,
			"request_id", RequestIDFrom(r.Context()), "error", err)
		return
	}
	s.log.Debugw("dataset exported", "dataset", x.Dataset.Name, "rows", n, "format", x.Options.Format.String())
}
