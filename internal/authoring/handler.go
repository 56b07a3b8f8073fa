package authoring

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"beacon/internal/dispatch"
	"beacon/internal/logger"
	"beacon/internal/registry"
	"beacon/internal/store"
	"beacon/internal/template"
	"beacon/internal/tracking"
	"beacon/pkg/cel"
	"beacon/pkg/errors"
	"beacon/pkg/metrics"
)

type BaseHandler struct {
	Logger logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

type Handler struct {
	BaseHandler
	triggers  *registry.TriggerRegistry
	options   *registry.OptionRegistry
	repo      store.Repository
	service   tracking.Service
	pipelines *tracking.PipelineFactory
	transport *dispatch.Transport
	evaluator *cel.Evaluator
}

func NewHandler(
	triggers *registry.TriggerRegistry,
	options *registry.OptionRegistry,
	repo store.Repository,
	service tracking.Service,
	pipelines *tracking.PipelineFactory,
	transport *dispatch.Transport,
	evaluator *cel.Evaluator,
	log logger.Logger,
) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{Logger: log},
		triggers:    triggers,
		options:     options,
		repo:        repo,
		service:     service,
		pipelines:   pipelines,
		transport:   transport,
		evaluator:   evaluator,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		triggers := v1.Group("/triggers")
		{
			triggers.GET("", h.ListTriggers)
			triggers.GET("/:id", h.GetTrigger)
			triggers.POST("/:id/fire", h.FireTrigger)
		}

		options := v1.Group("/options")
		{
			options.GET("/:type", h.GetOptionType)
		}

		templates := v1.Group("/templates")
		{
			templates.GET("", h.ListTemplateConfigs)
			templates.POST("", h.CreateTemplateConfig)
			templates.GET("/:id", h.GetTemplateConfig)
			templates.PUT("/:id", h.UpdateTemplateConfig)
			templates.DELETE("/:id", h.DeleteTemplateConfig)
		}

		v1.POST("/preview", h.PreviewTemplate)
		v1.POST("/events/test", h.SendTestEvent)
		v1.GET("/conditions/examples", h.ListConditionExamples)
	}
}

// ListTriggers godoc
// @Summary      List registered triggers
// @Description  Get all triggers that templates can be bound to
// @Tags         triggers
// @Produce      json
// @Success      200  {array}   registry.Trigger
// @Router       /triggers [get]
func (h *Handler) ListTriggers(c *gin.Context) {
	c.JSON(http.StatusOK, h.triggers.List())
}

// GetTrigger godoc
// @Summary      Get a trigger with its option types
// @Description  Get one trigger and the declared fields of every option type it resolves
// @Tags         triggers
// @Produce      json
// @Param        id   path      string  true  "Trigger ID"
// @Success      200  {object}  TriggerDetailResponse
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /triggers/{id} [get]
func (h *Handler) GetTrigger(c *gin.Context) {
	id := c.Param("id")

	trig := h.triggers.Get(id)
	if trig == nil {
		h.HandleError(c, errors.ErrNotFound.WithDetail("message", "trigger '"+id+"' not registered"))
		return
	}

	opts := make(map[string][]registry.OptionDescriptor, len(trig.OptionTypes))
	for _, typeID := range trig.OptionTypes {
		opts[typeID] = h.options.Declared(typeID)
	}

	c.JSON(http.StatusOK, TriggerDetailResponse{Trigger: *trig, Options: opts})
}

// GetOptionType godoc
// @Summary      Get an option type
// @Description  Get an option type's declared fields and the triggers that use it
// @Tags         options
// @Produce      json
// @Param        type  path      string  true  "Option type ID"
// @Success      200   {object}  OptionTypeResponse
// @Failure      404   {object}  errors.ErrorResponse
// @Router       /options/{type} [get]
func (h *Handler) GetOptionType(c *gin.Context) {
	typeID := c.Param("type")

	opt, ok := h.options.Get(typeID)
	if !ok {
		h.HandleError(c, errors.ErrNotFound.WithDetail("message", "option type '"+typeID+"' not registered"))
		return
	}

	triggerIDs := make([]string, 0)
	for _, t := range h.triggers.ListByOptionType(typeID) {
		triggerIDs = append(triggerIDs, t.ID)
	}

	c.JSON(http.StatusOK, OptionTypeResponse{
		ID:       opt.ID,
		Global:   opt.Global,
		Declared: h.options.Declared(typeID),
		Triggers: triggerIDs,
	})
}

// ListTemplateConfigs godoc
// @Summary      List template configurations
// @Description  Get template configurations, optionally filtered by trigger
// @Tags         templates
// @Produce      json
// @Param        trigger_id  query     string  false  "Trigger ID filter"
// @Success      200         {object}  ListTemplateConfigsResponse
// @Failure      500         {object}  errors.ErrorResponse
// @Router       /templates [get]
func (h *Handler) ListTemplateConfigs(c *gin.Context) {
	configs, err := h.repo.List(c.Request.Context(), c.Query("trigger_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListTemplateConfigsResponse{Configs: configs, Total: len(configs)})
}

// CreateTemplateConfig godoc
// @Summary      Create a template configuration
// @Description  Create a template configuration bound to a registered trigger
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        config  body      CreateTemplateConfigRequest  true  "Template configuration"
// @Success      201     {object}  store.TemplateConfig
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      409     {object}  errors.ErrorResponse
// @Router       /templates [post]
func (h *Handler) CreateTemplateConfig(c *gin.Context) {
	var req CreateTemplateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	cfg, err := h.buildConfig(req.TriggerID, req.ScopeID, req.Name, req.Values, req.Condition, req.Enabled)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.repo.Create(c.Request.Context(), cfg); err != nil {
		h.HandleError(c, err)
		return
	}

	h.updateActiveGauge(c)
	c.JSON(http.StatusCreated, cfg)
}

// GetTemplateConfig godoc
// @Summary      Get a template configuration
// @Tags         templates
// @Produce      json
// @Param        id   path      string  true  "Template configuration ID"
// @Success      200  {object}  store.TemplateConfig
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /templates/{id} [get]
func (h *Handler) GetTemplateConfig(c *gin.Context) {
	cfg, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateTemplateConfig godoc
// @Summary      Update a template configuration
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        id      path      string                       true  "Template configuration ID"
// @Param        config  body      UpdateTemplateConfigRequest  true  "Template configuration"
// @Success      200     {object}  store.TemplateConfig
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      404     {object}  errors.ErrorResponse
// @Router       /templates/{id} [put]
func (h *Handler) UpdateTemplateConfig(c *gin.Context) {
	var req UpdateTemplateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	cfg, err := h.buildConfig(req.TriggerID, req.ScopeID, req.Name, req.Values, req.Condition, req.Enabled)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	cfg.ID = c.Param("id")

	if err := h.repo.Update(c.Request.Context(), cfg); err != nil {
		h.HandleError(c, err)
		return
	}

	h.updateActiveGauge(c)
	c.JSON(http.StatusOK, cfg)
}

// DeleteTemplateConfig godoc
// @Summary      Delete a template configuration
// @Tags         templates
// @Param        id  path  string  true  "Template configuration ID"
// @Success      204
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /templates/{id} [delete]
func (h *Handler) DeleteTemplateConfig(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}

	h.updateActiveGauge(c)
	c.Status(http.StatusNoContent)
}

// PreviewTemplate godoc
// @Summary      Preview a template
// @Description  Render a template against resolved facts, marking unresolved placeholders as [type:field]
// @Tags         preview
// @Accept       json
// @Produce      json
// @Param        preview  body      PreviewRequest  true  "Preview request"
// @Success      200      {object}  PreviewResponse
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      404      {object}  errors.ErrorResponse
// @Router       /preview [post]
func (h *Handler) PreviewTemplate(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	rendered, err := h.service.Preview(c.Request.Context(), tracking.FireRequest{
		TriggerID:   req.TriggerID,
		Identifiers: req.Identifiers,
		ScopeID:     req.ScopeID,
		Overrides:   req.Overrides,
	}, req.Template)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, PreviewResponse{Rendered: rendered})
}

// SendTestEvent godoc
// @Summary      Send a test event
// @Description  Deliver one event synchronously and surface the collector's response
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        event  body      TestEventRequest  true  "Test event"
// @Success      200    {object}  dispatch.DeliveryResult
// @Failure      400    {object}  errors.ErrorResponse
// @Failure      502    {object}  errors.ErrorResponse
// @Router       /events/test [post]
func (h *Handler) SendTestEvent(c *gin.Context) {
	var req TestEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	result, err := h.transport.SendTest(c.Request.Context(), dispatch.Event{
		Name:   req.Name,
		Values: req.Values,
	})
	if err != nil {
		h.Logger.WarnwCtx(c.Request.Context(), "Test event delivery failed",
			"event", req.Name,
			"error", err,
		)
		appErr := errors.ErrDeliveryFailed.WithCause(err)
		if result != nil {
			appErr = appErr.WithDetail("result", result)
		}
		c.JSON(http.StatusBadGateway, errors.ToErrorResponse(appErr))
		return
	}

	c.JSON(http.StatusOK, result)
}

// FireTrigger godoc
// @Summary      Fire a trigger
// @Description  Assemble and deliver the events for one trigger firing
// @Tags         triggers
// @Accept       json
// @Produce      json
// @Param        id      path      string              true  "Trigger ID"
// @Param        firing  body      FireTriggerRequest  true  "Firing parameters"
// @Param        sync    query     bool                false "Wait for delivery and return results"
// @Success      200     {object}  FireTriggerResponse
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      404     {object}  errors.ErrorResponse
// @Router       /triggers/{id}/fire [post]
func (h *Handler) FireTrigger(c *gin.Context) {
	var req FireTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	pipeline := h.pipelines.New()
	err := pipeline.Fire(c.Request.Context(), tracking.FireRequest{
		TriggerID:   c.Param("id"),
		Identifiers: req.Identifiers,
		ScopeID:     req.ScopeID,
		Overrides:   req.Overrides,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	queued := pipeline.Queued()

	// Delivery is fire and forget unless the caller asks to wait.
	if c.Query("sync") == "true" {
		results := pipeline.Flush(c.Request.Context())
		c.JSON(http.StatusOK, FireTriggerResponse{Queued: queued, Results: results})
		return
	}

	pipeline.FlushAsync()
	c.JSON(http.StatusOK, FireTriggerResponse{Queued: queued})
}

// ListConditionExamples godoc
// @Summary      List condition expression examples
// @Tags         templates
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /conditions/examples [get]
func (h *Handler) ListConditionExamples(c *gin.Context) {
	c.JSON(http.StatusOK, cel.ConditionExpressionExamples)
}

func (h *Handler) buildConfig(triggerID, scopeID, name string, values template.Values, condition string, enabled *bool) (*store.TemplateConfig, error) {
	trig := h.triggers.Get(triggerID)
	if trig == nil {
		return nil, errors.ErrValidation.
			WithDetail("message", "trigger '"+triggerID+"' not registered")
	}

	if scopeID != "" && !trig.SupportsSingle {
		return nil, errors.ErrValidation.
			WithDetail("message", "trigger '"+triggerID+"' does not support scoped configurations")
	}
	if scopeID == "" && !trig.SupportsGlobal {
		return nil, errors.ErrValidation.
			WithDetail("message", "trigger '"+triggerID+"' does not support global configurations")
	}

	if condition != "" && h.evaluator != nil {
		if err := h.evaluator.ValidateCondition(condition); err != nil {
			return nil, errors.ErrValidation.WithCause(err).
				WithDetail("message", "invalid condition expression")
		}
	}

	cfg := &store.TemplateConfig{
		TriggerID: triggerID,
		ScopeID:   scopeID,
		Name:      name,
		Values:    values,
		Condition: condition,
		Enabled:   true,
	}
	if enabled != nil {
		cfg.Enabled = *enabled
	}

	return cfg, nil
}

func (h *Handler) updateActiveGauge(c *gin.Context) {
	if count, err := h.repo.CountEnabled(c.Request.Context()); err == nil {
		metrics.SetTemplateConfigsActive(int(count))
	}
}
