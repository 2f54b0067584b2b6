package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"

	"xsmodels/core"
	"xsmodels/xspec"
)

func (s *Server) readSettings() (SettingsDTO, error) {
	var out SettingsDTO
	var err error
	if out.Version, err = s.session.Version(); err != nil {
		return out, err
	}
	chatter, err := s.session.Chatter()
	if err != nil {
		return out, err
	}
	out.Chatter = &chatter
	if out.Abundance, err = s.session.Abundance(); err != nil {
		return out, err
	}
	if out.CrossSection, err = s.session.CrossSection(); err != nil {
		return out, err
	}
	cosmo, err := s.session.Cosmology()
	if err != nil {
		return out, err
	}
	out.Cosmology = &cosmo
	if out.ModelStrings, err = s.session.ModelStrings(); err != nil {
		return out, err
	}
	return out, nil
}

func (s *Server) handleGetSettings(c *echo.Context) error {
	out, err := s.readSettings()
	if err != nil {
		return writeLibraryError(c, err)
	}
	return writeJSON(c, http.StatusOK, out)
}

// handlePutSettings applies the body the same way a start-up profile is
// applied, then answers with the resulting settings.
func (s *Server) handlePutSettings(c *echo.Context) error {
	req, err := decodeJSON[SettingsDTO](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	p := &core.Profile{
		Chatter:      req.Chatter,
		Abundance:    req.Abundance,
		CrossSection: req.CrossSection,
		ModelStrings: req.ModelStrings,
		Keywords:     req.Keywords,
		XFLT:         req.XFLT,
	}
	if req.Cosmology != nil {
		p.Cosmology = &core.ProfileCosmology{H0: req.Cosmology.H0, Q0: req.Cosmology.Q0, Lambda0: req.Cosmology.Lambda0}
	}
	if err := p.Validate(); err != nil {
		return writeBadRequest(c, err.Error())
	}
	if err := xspec.ApplyProfile(s.session, p); err != nil {
		return writeLibraryError(c, err)
	}
	return s.handleGetSettings(c)
}

func (s *Server) handleListElements(c *echo.Context) error {
	n, err := s.session.NumberElements()
	if err != nil {
		return writeLibraryError(c, err)
	}
	elements := make([]ElementDTO, 0, n)
	for z := 1; z <= n; z++ {
		name, err := s.session.ElementName(z)
		if err != nil {
			return writeLibraryError(c, err)
		}
		abund, err := s.session.ElementAbundanceByZ(z)
		if err != nil {
			return writeLibraryError(c, err)
		}
		elements = append(elements, ElementDTO{Z: z, Name: name, Abundance: abund})
	}
	return writeJSON(c, http.StatusOK, map[string]any{"elements": elements})
}

// handleElement accepts an atomic number or an element symbol.
func (s *Server) handleElement(c *echo.Context) error {
	id := c.Param("id")
	if z, err := strconv.Atoi(id); err == nil {
		name, err := s.session.ElementName(z)
		if err != nil {
			return writeLibraryError(c, err)
		}
		abund, err := s.session.ElementAbundanceByZ(z)
		if err != nil {
			return writeLibraryError(c, err)
		}
		return writeJSON(c, http.StatusOK, ElementDTO{Z: z, Name: name, Abundance: abund})
	}
	abund, err := s.session.ElementAbundance(id)
	if err != nil {
		return writeLibraryError(c, err)
	}
	return writeJSON(c, http.StatusOK, ElementDTO{Name: id, Abundance: abund})
}

type keywordBody struct {
	Value float64 `json:"value"`
}

type stringBody struct {
	Value string `json:"value"`
}

func (s *Server) handleKeyword(c *echo.Context) error {
	key := c.Param("key")
	v, err := s.session.Keyword(key)
	if err != nil {
		return writeLibraryError(c, err)
	}
	return writeJSON(c, http.StatusOK, map[string]any{"key": key, "value": v})
}

func (s *Server) handleSetKeyword(c *echo.Context) error {
	body, err := decodeJSON[keywordBody](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if err := s.session.SetKeyword(c.Param("key"), body.Value); err != nil {
		return writeLibraryError(c, err)
	}
	return s.handleKeyword(c)
}

func (s *Server) handleModelString(c *echo.Context) error {
	key := c.Param("key")
	v, err := s.session.ModelString(key)
	if err != nil {
		return writeLibraryError(c, err)
	}
	return writeJSON(c, http.StatusOK, map[string]any{"key": key, "value": v})
}

func (s *Server) handleSetModelString(c *echo.Context) error {
	body, err := decodeJSON[stringBody](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if err := s.session.SetModelString(c.Param("key"), body.Value); err != nil {
		return writeLibraryError(c, err)
	}
	return s.handleModelString(c)
}

func spectrumParam(c *echo.Context) (int, error) {
	n, err := strconv.Atoi(c.Param("spectrum"))
	if err != nil || n < 1 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

func (s *Server) handleXFLT(c *echo.Context) error {
	spec, err := spectrumParam(c)
	if err != nil {
		return writeBadRequest(c, "spectrum must be a positive integer")
	}
	values, err := s.session.XFLT(spec)
	if err != nil {
		return writeLibraryError(c, err)
	}
	if values == nil {
		values = map[string]float64{}
	}
	return writeJSON(c, http.StatusOK, map[string]any{"spectrum": spec, "values": values})
}

func (s *Server) handleSetXFLT(c *echo.Context) error {
	spec, err := spectrumParam(c)
	if err != nil {
		return writeBadRequest(c, "spectrum must be a positive integer")
	}
	values, err := decodeJSON[map[string]float64](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if err := s.session.SetXFLT(spec, values); err != nil {
		return writeLibraryError(c, err)
	}
	return s.handleXFLT(c)
}

func (s *Server) handleHealth(c *echo.Context) error {
	if s.metrics != nil {
		return writeJSON(c, http.StatusOK, s.metrics.GetSystemStatus())
	}
	return writeJSON(c, http.StatusOK, map[string]any{
		"ready":      s.session.Guard().Ready(),
		"last_check": time.Now(),
	})
}

func (s *Server) handleMetrics(c *echo.Context) error {
	if s.metrics == nil {
		return writeError(c, http.StatusNotFound, "not_found", "metrics are not enabled")
	}
	return writeJSON(c, http.StatusOK, MetricsDTO{
		Status: s.metrics.GetSystemStatus(),
		Calls:  s.metrics.GetCallMetrics(),
	})
}

func (s *Server) handleRecentCalls(c *echo.Context) error {
	if s.metrics == nil {
		return writeError(c, http.StatusNotFound, "not_found", "metrics are not enabled")
	}
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return writeBadRequest(c, "limit must be a positive integer")
		}
		limit = n
	}
	return writeJSON(c, http.StatusOK, map[string]any{"calls": s.metrics.GetRecentCalls(limit)})
}
