package controllers

import (
	"context"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"analytics-service/deferred"
	apperrors "analytics-service/errors"
	"analytics-service/hooks"
	"analytics-service/logger"
	"analytics-service/middleware"
	"analytics-service/models"
	aws_pkg "analytics-service/pkg/aws"
	"analytics-service/repository"
	"analytics-service/sink"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const emitTimeout = 5 * time.Second

// CartLookup resolves the cart of a visitor.
type CartLookup interface {
	ForVisitor(visitorID string) repository.CartAccessor
}

type AnalyticsController struct {
	Registry *hooks.Registry
	Stores   *deferred.Factory
	Carts    CartLookup
	Sink     sink.Sink
	Metrics  aws_pkg.MetricsRecorder
	Logger   *zap.Logger

	wg sync.WaitGroup
}

func NewAnalyticsController(
	registry *hooks.Registry,
	stores *deferred.Factory,
	carts CartLookup,
	s sink.Sink,
	metrics aws_pkg.MetricsRecorder,
	log *zap.Logger,
) *AnalyticsController {
	if s == nil {
		s = sink.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalyticsController{
		Registry: registry,
		Stores:   stores,
		Carts:    carts,
		Sink:     s,
		Metrics:  metrics,
		Logger:   log,
	}
}

// scope builds the hook scope of the visitor making the request.
func (ac *AnalyticsController) scope(c *gin.Context) *hooks.Scope {
	visitorID := c.GetString(middleware.VisitorIDKey)
	s := &hooks.Scope{
		Store: metered(ac.Stores.ForRequest(c.Writer, c.Request, visitorID), ac.Metrics, ac.Stores.Mode()),
	}
	if ac.Carts != nil {
		s.Cart = ac.Carts.ForVisitor(cartOwner(c))
	}
	return s
}

// cartOwner returns the id the cart service keys the cart under: the
// storefront user id when the gateway forwarded one, else the visitor id.
func cartOwner(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(middleware.UserIDHeader)); id != "" {
		return id
	}
	return c.GetString(middleware.VisitorIDKey)
}

// AddToCart records an item the visitor just added to their cart.
func (ac *AnalyticsController) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ErrValidation.Wrap(err))
		return
	}

	scope := ac.scope(c)
	scope.Form = ac.cartForm(c, req.PostData)

	ac.Registry.AddToCart(c.Request.Context(), scope, req.DownloadID, req.Options)
	c.Status(http.StatusNoContent)
}

// cartForm returns the submitted add-to-cart form: postData when given,
// otherwise the request's own form values.
func (ac *AnalyticsController) cartForm(c *gin.Context, postData string) url.Values {
	if postData == "" {
		if err := c.Request.ParseForm(); err != nil {
			return nil
		}
		return c.Request.Form
	}
	form, err := url.ParseQuery(postData)
	if err != nil {
		// keep whatever pairs parsed
		logger.For(c, ac.Logger).Debug("Partial add-to-cart form", zap.Error(err))
	}
	return form
}

// RemoveFromCart records the cart slot the visitor is about to remove.
func (ac *AnalyticsController) RemoveFromCart(c *gin.Context) {
	var req models.RemoveFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ErrValidation.Wrap(err))
		return
	}

	ac.Registry.RemoveFromCart(c.Request.Context(), ac.scope(c), *req.CartKey)
	c.Status(http.StatusNoContent)
}

// CompletePurchase records a completed payment.
func (ac *AnalyticsController) CompletePurchase(c *gin.Context) {
	var req models.CompletePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ErrValidation.Wrap(err))
		return
	}

	ac.Registry.CompletePurchase(c.Request.Context(), ac.scope(c), req.PaymentID)
	c.Status(http.StatusNoContent)
}

// Events returns the page and track events for the current render. Only
// events a hook shaped are forwarded to the sink; a plain page view is not.
func (ac *AnalyticsController) Events(c *gin.Context) {
	var page models.PageContext
	if err := c.ShouldBindQuery(&page); err != nil {
		_ = c.Error(apperrors.ErrBadRequest.Wrap(err))
		return
	}
	if page.Kind == "" {
		page.Kind = models.PageOther
	}

	scope := ac.scope(c)
	scope.Page = page
	ctx := repository.WithRowCache(c.Request.Context())

	defaultPage := models.NormalizedEvent{Kind: models.KindPageView, Name: page.Title}
	pageEvent := ac.Registry.RenderPage(ctx, scope, defaultPage)
	track := ac.Registry.RenderTrack(ctx, scope, models.NormalizedEvent{})

	resp := models.EventsResponse{Page: pageEvent}
	var emitted []models.NormalizedEvent
	if !reflect.DeepEqual(pageEvent, defaultPage) {
		emitted = append(emitted, pageEvent)
	}
	if !track.IsZero() {
		resp.Track = &track
		emitted = append(emitted, track)
	}

	if len(emitted) > 0 {
		ac.emit(logger.For(c, ac.Logger), c.GetString(middleware.VisitorIDKey), emitted)
	}
	c.JSON(http.StatusOK, resp)
}

// emit hands events to the sink off the request path.
func (ac *AnalyticsController) emit(log *zap.Logger, visitorID string, events []models.NormalizedEvent) {
	ac.wg.Add(1)
	go func() {
		defer ac.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()

		if err := ac.Sink.Emit(ctx, visitorID, events...); err != nil {
			log.Warn("Failed to emit analytics events", zap.Int("count", len(events)), zap.Error(err))
			ac.record(ctx, aws_pkg.MetricSinkFailures, nil)
			return
		}
		for _, ev := range events {
			ac.record(ctx, aws_pkg.MetricEventsEmitted, map[string]string{"Kind": string(ev.Kind)})
		}
	}()
}

// Wait blocks until in-flight sink emissions finish.
func (ac *AnalyticsController) Wait() {
	ac.wg.Wait()
}

func (ac *AnalyticsController) record(ctx context.Context, name string, dims map[string]string) {
	if ac.Metrics == nil || !ac.Metrics.IsEnabled() {
		return
	}
	_ = ac.Metrics.RecordCount(ctx, name, dims)
}

// Health reports liveness and the configured deferred store.
func (ac *AnalyticsController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"deferred_store": ac.Stores.Mode(),
	})
}
