package riwayat

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/infrastructure/resilience"
)

// breakerOperation shares one breaker across endpoints: the service is either reachable or not.
const breakerOperation = "riwayat_api"

// Client talks to the storage service over its JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.ClientConfig())
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

// Offline reports whether recent failures tripped the breaker.
func (c *Client) Offline() bool {
	return c.executor.Open(breakerOperation)
}

func (c *Client) ListShipmentNames(ctx context.Context) ([]domain.ShipmentName, error) {
	var names []domain.ShipmentName
	if err := c.doJSON(ctx, http.MethodGet, "/api/master-kiriman", nil, &names, "list_shipment_names"); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) ListRecent(ctx context.Context) ([]domain.ShipmentBatch, error) {
	var batches []domain.ShipmentBatch
	if err := c.doJSON(ctx, http.MethodGet, "/api/riwayat", nil, &batches, "list_recent"); err != nil {
		return nil, err
	}
	return batches, nil
}

func (c *Client) GetBatch(ctx context.Context, id int64) (*domain.ShipmentBatch, error) {
	var detail struct {
		Batch domain.ShipmentBatch `json:"batch"`
	}
	path := "/api/riwayat/" + strconv.FormatInt(id, 10)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &detail, "get_batch"); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, domain.WrapError(domain.ErrBatchNotFound, "get_batch", fmt.Errorf("id=%d", id))
		}
		return nil, err
	}
	return &detail.Batch, nil
}

func (c *Client) SubmitBatch(ctx context.Context, batch domain.NewBatch) (*domain.ShipmentBatch, error) {
	var created domain.ShipmentBatch
	if err := c.doJSON(ctx, http.MethodPost, "/api/riwayat", batch, &created, "submit_batch"); err != nil {
		if isStatus(err, http.StatusBadRequest) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "submit_batch", err)
		}
		return nil, err
	}
	return &created, nil
}

// Close drops idle keep-alive connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
