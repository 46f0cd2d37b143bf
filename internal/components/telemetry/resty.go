package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
)

var meter = otel.Meter("alamos-extract/http")

type instrumentResty struct {
	tel       API
	idcounter *uint64
	pages     metric.Int64Counter
}

// InstrumentResty reports every request made by client with an id, its
// duration and its status, and counts responses by status code.
func InstrumentResty(client *resty.Client, tel API) {
	var idcounter uint64
	pages, err := meter.Int64Counter(
		"http.client.responses",
		metric.WithDescription("responses received, by method and status"),
	)
	if err != nil {
		tel.ReportWarning(report_resty_request, err)
	}
	i := instrumentResty{tel: tel, idcounter: &idcounter, pages: pages}

	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

type reqCtxKeyType int

var reqCtxKey reqCtxKeyType

type reqCtx struct {
	id        uint64
	startTime time.Time
}

func (i instrumentResty) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	ctx := req.Context()

	id := atomic.AddUint64(i.idcounter, 1)
	ctx = context.WithValue(ctx, reqCtxKey, reqCtx{
		id:        id,
		startTime: time.Now(),
	})
	i.tel.ReportDebug(report_resty_request, id, req.Method, req.URL)

	req.SetContext(ctx)
	return nil
}

func (i instrumentResty) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()

	reqCtx, ok := ctx.Value(reqCtxKey).(reqCtx)
	if !ok {
		panic("failed to get request context")
	}

	i.tel.ReportDebug(
		report_resty_response,
		reqCtx.id,
		time.Since(reqCtx.startTime).String(),
		res.Status(),
	)
	if i.pages != nil {
		i.pages.Add(ctx, 1, metric.WithAttributes(
			attribute.String("method", res.Request.Method),
			attribute.Int("status", res.StatusCode()),
		))
	}

	return nil
}

func (i instrumentResty) onError(req *resty.Request, err error) {
	ctx := req.Context()

	var duration time.Duration
	if reqCtx, ok := ctx.Value(reqCtxKey).(reqCtx); ok {
		duration = time.Since(reqCtx.startTime)
	}

	i.tel.ReportBroken(
		report_resty_response,
		err,
		req.Method,
		req.URL,
		duration,
	)
}
