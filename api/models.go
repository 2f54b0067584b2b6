package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v5"

	"xsmodels/core"
	"xsmodels/native"
	"xsmodels/xspec"
)

// parseFilter reads the comma-separated type and language query
// parameters.
func parseFilter(c *echo.Context) (xspec.Filter, error) {
	var f xspec.Filter
	for _, v := range splitList(c.QueryParam("type")) {
		t, ok := native.ParseModelType(v)
		if !ok {
			return f, fmt.Errorf("unknown model type %q", v)
		}
		f.Types = append(f.Types, t)
	}
	for _, v := range splitList(c.QueryParam("language")) {
		l, ok := native.ParseLanguageStyle(v)
		if !ok {
			return f, fmt.Errorf("unknown language style %q", v)
		}
		f.Languages = append(f.Languages, l)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *Server) handleListModels(c *echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	cat := s.session.Catalog()
	names := cat.List(f)
	models := make([]ModelDTO, 0, len(names))
	for _, name := range names {
		info, err := cat.Info(name)
		if err != nil {
			return writeLibraryError(c, err)
		}
		models = append(models, NewModelDTO(info))
	}
	return writeJSON(c, http.StatusOK, map[string]any{"models": models})
}

func (s *Server) handleModelInfo(c *echo.Context) error {
	info, err := s.session.Catalog().Info(c.Param("name"))
	if err != nil {
		return writeLibraryError(c, err)
	}
	return writeJSON(c, http.StatusOK, NewModelDTO(info))
}

func (s *Server) handleEval(c *echo.Context) error {
	req, err := decodeJSON[EvalRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	name := c.Param("name")
	var values []float64
	err = s.run(func() error {
		var err error
		values, err = xspec.Evaluate(s.session, name, xspec.EvalRequest{
			Pars:       req.Pars,
			Energies:   req.Energies,
			Model:      req.Model,
			Spectrum:   req.Spectrum,
			InitString: req.InitString,
		})
		return err
	})
	if err != nil {
		return writeLibraryError(c, err)
	}
	return writeJSON(c, http.StatusOK, EvalResponse[float64]{
		Model:     name,
		Values:    values,
		RequestID: requestID(c),
	})
}

func (s *Server) handleTableEval(c *echo.Context) error {
	req, err := decodeJSON[TableEvalRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Path == "" {
		return writeBadRequest(c, "path is required")
	}
	if s.tableDir == "" {
		return writeError(c, http.StatusForbidden, "forbidden", "table models are not served; set "+core.EnvTableDir)
	}
	if !filepath.IsLocal(req.Path) {
		return writeError(c, http.StatusForbidden, "forbidden", "path must be relative to the table directory")
	}
	path := filepath.Join(s.tableDir, req.Path)
	typ, err := xspec.ParseTableType(req.Type)
	if err != nil {
		return writeLibraryError(c, err)
	}
	var opts []xspec.Option
	if req.Spectrum != nil {
		opts = append(opts, xspec.WithSpectrum(*req.Spectrum))
	}

	var values []float32
	err = s.run(func() error {
		var err error
		values, err = s.session.TableModel(path, typ, xspec.Vec(req.Pars), xspec.Vec(req.Energies), opts...)
		return err
	})
	if err != nil {
		return writeLibraryError(c, err)
	}
	return writeJSON(c, http.StatusOK, EvalResponse[float32]{
		Model:     req.Path,
		Values:    values,
		RequestID: requestID(c),
	})
}
