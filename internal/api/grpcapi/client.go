// Package grpcapi реализует клиент удалённого API меню поверх gRPC (sms.test.SmsTestService).
// Флаг цены передаётся как google.protobuf.BoolValue, меню и заказ кодируются типизированными
// сообщениями из messages.go.
package grpcapi

import (
	"context"
	"fmt"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
	"github.com/vladislavdragonenkov/smartmeal/internal/result"
)

// DefaultTimeout ограничивает время одного вызова.
const DefaultTimeout = 30 * time.Second

// Client: gRPC-клиент API меню.
type Client struct {
	conn    grpc.ClientConnInterface
	closer  func() error
	timeout time.Duration
	logger  *log.Entry
}

// Dial открывает соединение с сервисом меню. Клиентские метрики пишутся через go-grpc-prometheus.
func Dial(addr string, timeout time.Duration, logger *log.Entry, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(promgrpc.UnaryClientInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial menu service %s: %w", addr, err)
	}

	client := NewClient(conn, timeout, logger)
	client.closer = conn.Close
	return client, nil
}

// NewClient оборачивает готовое соединение.
func NewClient(conn grpc.ClientConnInterface, timeout time.Duration, logger *log.Entry) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New().WithField("component", "grpc-api")
	}
	return &Client{
		conn:    conn,
		closer:  func() error { return nil },
		timeout: timeout,
		logger:  logger,
	}
}

// Close закрывает соединение, если клиент его открывал.
func (c *Client) Close() error {
	return c.closer()
}

// FetchMenu вызывает GetMenu.
func (c *Client) FetchMenu(ctx context.Context, withPrice bool) result.Result[[]domain.MenuItem] {
	resp := new(GetMenuResponse)
	if err := c.invoke(ctx, MethodGetMenu, wrapperspb.Bool(withPrice), resp); err != nil {
		return result.Fail[[]domain.MenuItem](err)
	}
	if !resp.Success {
		return result.Fail[[]domain.MenuItem](apiError("GetMenu", resp.ErrorMessage))
	}

	items, err := ToDomainMenu(resp.MenuItems)
	if err != nil {
		return result.Failf[[]domain.MenuItem](domain.CodeTransport, "decode menu: %v", err)
	}
	return result.Ok(items)
}

// SubmitOrder вызывает SendOrder.
func (c *Client) SubmitOrder(ctx context.Context, order domain.Order) result.Result[struct{}] {
	resp := new(SendOrderResponse)
	if err := c.invoke(ctx, MethodSendOrder, FromDomainOrder(order), resp); err != nil {
		return result.Fail[struct{}](err)
	}
	if !resp.Success {
		return result.Fail[struct{}](apiError("SendOrder", resp.ErrorMessage))
	}
	return result.Ok(struct{}{})
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) *domain.Error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := c.conn.Invoke(ctx, method, req, resp, CallCodec())
	logger := c.logger.WithFields(log.Fields{
		"method":   method,
		"duration": time.Since(start),
	})
	if err != nil {
		st := status.Convert(err)
		logger.WithError(err).WithField("code", st.Code().String()).Warn("grpc call failed")
		return domain.Errorf(domain.CodeTransport, "%s failed: %s (%s)", method, st.Message(), st.Code())
	}
	logger.Debug("grpc call completed")
	return nil
}

func apiError(method, message string) *domain.Error {
	if message == "" {
		message = method + " was rejected by the server"
	}
	return domain.NewError(domain.CodeAPI, message)
}
