package server

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/export"
	"github.com/Iron-Ham/framegraph/internal/filter"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
)

type passResponse struct {
	export.PassView
	Tooltip  string            `json:"tooltip"`
	Incoming []export.EdgeView `json:"incoming"`
	Outgoing []export.EdgeView `json:"outgoing"`
}

type selectRequest struct {
	View string `json:"view"`
	Node string `json:"node" binding:"required_without=Edge"`
	Edge string `json:"edge" binding:"required_without=Node"`
}

type intentResponse struct {
	Kind     string `json:"kind"`
	EventID  uint32 `json:"eventId,omitempty"`
	Resource string `json:"resource,omitempty"`
}

// statusFor maps an error to the HTTP status reported to clients.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrGraphNotBuilt), errors.Is(err, errors.ErrCaptureNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrInvalidCapture),
		errors.Is(err, errors.ErrDuplicateEvent),
		errors.Is(err, errors.ErrUnsupportedCapture):
		// A capture that names a missing event is malformed, not a lookup miss.
		return http.StatusUnprocessableEntity
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrInvalidInput),
		errors.Is(err, errors.ErrUnknownView),
		errors.Is(err, errors.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCanceled), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && !errors.IsUserFacing(err) {
		msg = http.StatusText(status)
	}
	args := []any{"path", c.Request.URL.Path, "status", status, "error", err}
	switch errors.GetSeverity(err) {
	case errors.SeverityDebug, errors.SeverityInfo:
		s.logger.Debug("request failed", args...)
	case errors.SeverityWarning:
		s.logger.Warn("request failed", args...)
	default:
		s.logger.Error("request failed", args...)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) graph(c *gin.Context) (*framegraph.Graph, bool) {
	g, err := s.ws.Graph()
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return g, true
}

func eventParam(c *gin.Context, name string) (uint32, error) {
	raw := c.Param(name)
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.NewValidationError("event id must be a non-negative integer").
			WithField(name).
			WithValue(raw)
	}
	return uint32(n), nil
}

func (s *Server) health(c *gin.Context) {
	st := s.ws.State()
	body := gin.H{
		"capture": st.Path,
		"digest":  st.Digest,
		"cached":  st.Cached,
	}
	if st.Err != nil {
		body["error"] = st.Err.Error()
	}
	if st.Graph == nil {
		body["status"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["buildId"] = st.Graph.BuildID
	body["status"] = "ok"
	if st.Err != nil {
		body["status"] = "degraded"
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) listPasses(c *gin.Context) {
	g, ok := s.graph(c)
	if !ok {
		return
	}
	f, err := filter.Compile(c.Query("filter"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var frame uint64
	if raw := c.Query("frame"); raw != "" {
		frame, err = strconv.ParseUint(raw, 10, 32)
		if err != nil {
			s.fail(c, errors.NewValidationError("frame must be a non-negative integer").WithField("frame").WithValue(raw))
			return
		}
	}

	views := make([]export.PassView, 0, len(g.Passes))
	for _, p := range f.Apply(g) {
		if frame != 0 && uint64(p.Frame) != frame {
			continue
		}
		views = append(views, export.NewPassView(g, p))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(views), "passes": views})
}

func (s *Server) getPass(c *gin.Context) {
	g, ok := s.graph(c)
	if !ok {
		return
	}
	eid, err := eventParam(c, "eid")
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := g.Pass(eid)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, passResponse{
		PassView: export.NewPassView(g, p),
		Tooltip:  g.PassTooltip(p),
		Incoming: export.EdgeViews(g, g.Incoming(eid)),
		Outgoing: export.EdgeViews(g, g.Outgoing(eid)),
	})
}

func (s *Server) listEdges(c *gin.Context) {
	g, ok := s.graph(c)
	if !ok {
		return
	}
	edges := g.Edges
	if raw := c.Query("kind"); raw != "" {
		var kind framegraph.EdgeKind
		if err := kind.UnmarshalText([]byte(raw)); err != nil {
			s.fail(c, err)
			return
		}
		edges = edges[:0:0]
		for _, e := range g.Edges {
			if e.Kind == kind {
				edges = append(edges, e)
			}
		}
	}
	views := export.EdgeViews(g, edges)
	c.JSON(http.StatusOK, gin.H{"count": len(views), "edges": views})
}

func (s *Server) effectiveEvent(c *gin.Context) {
	g, ok := s.graph(c)
	if !ok {
		return
	}
	eid, err := eventParam(c, "eid")
	if err != nil {
		s.fail(c, err)
		return
	}
	effective, err := g.EffectiveEventID(eid)
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := g.Pass(effective)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"eventId":          eid,
		"effectiveEventId": effective,
		"pass":             p.Title(),
		"frame":            p.Frame,
	})
}

func (s *Server) textureTooltip(c *gin.Context) {
	g, ok := s.graph(c)
	if !ok {
		return
	}
	raw := c.Param("id")
	res, err := capture.ParseResourceID(raw)
	if err != nil {
		s.fail(c, errors.NewValidationError("malformed resource id").WithField("id").WithValue(raw))
		return
	}
	usage := ""
	if ev := c.Query("event"); ev != "" {
		eid, err := strconv.ParseUint(ev, 10, 32)
		if err != nil {
			s.fail(c, errors.NewValidationError("event must be a non-negative integer").WithField("event").WithValue(ev))
			return
		}
		usage = g.UsageInfo(uint32(eid), res)
	}
	c.JSON(http.StatusOK, gin.H{
		"resource": res.String(),
		"name":     g.ResourceName(res),
		"tooltip":  g.TextureTooltip(res, usage),
		"usages":   g.ResourceUsageLines(res),
	})
}

func (s *Server) render(c *gin.Context, f export.Format) {
	g, ok := s.graph(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, g, f, s.ws.ExportOptions()); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, f.ContentType(), buf.Bytes())
}

func (s *Server) graphDOT(c *gin.Context) {
	name := c.DefaultQuery("view", s.ws.Config().View.Default)
	v, err := framegraph.ParseView(name)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, export.ForView(v))
}

func (s *Server) graphSVG(c *gin.Context)  { s.render(c, export.FormatSVG) }
func (s *Server) graphJSON(c *gin.Context) { s.render(c, export.FormatJSON) }

func (s *Server) selectIntents(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.NewValidationError("node or edge is required").WithValue(err.Error()))
		return
	}
	g, ok := s.graph(c)
	if !ok {
		return
	}
	view := framegraph.SimpleView
	if req.View != "" {
		v, err := framegraph.ParseView(req.View)
		if err != nil {
			s.fail(c, err)
			return
		}
		view = v
	}

	sel := framegraph.Selection{View: view}
	if req.Edge != "" {
		e, err := g.EdgeByID(req.Edge)
		if err != nil {
			s.fail(c, err)
			return
		}
		sel.Edge = &e
	} else {
		n, err := framegraph.ParseNodeID(req.Node)
		if err != nil {
			s.fail(c, err)
			return
		}
		if pn, ok := n.(framegraph.PassNode); ok {
			if _, err := g.Pass(pn.EffectiveEventID); err != nil {
				s.fail(c, err)
				return
			}
		}
		sel.Node = n
	}

	intents := framegraph.Select(sel)
	out := make([]intentResponse, 0, len(intents))
	for _, in := range intents {
		r := intentResponse{Kind: in.Kind.String(), EventID: in.EventID}
		if !in.Resource.IsNull() {
			r.Resource = in.Resource.String()
		}
		out = append(out, r)
	}
	c.JSON(http.StatusOK, gin.H{"intents": out})
}

func (s *Server) rebuild(c *gin.Context) {
	g, err := s.ws.Rebuild(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"buildId": g.BuildID,
		"stats":   g.Stats(),
	})
}
