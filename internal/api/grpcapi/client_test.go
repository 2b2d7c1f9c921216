package grpcapi

import (
	"context"
	"math"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
)

const bufSize = 1024 * 1024

type fakeMenuService struct {
	mu        sync.Mutex
	menu      *GetMenuResponse
	menuErr   error
	orderResp *SendOrderResponse
	withPrice []bool
	orders    []*Order
}

func (f *fakeMenuService) GetMenu(_ context.Context, in *wrapperspb.BoolValue) (*GetMenuResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.withPrice = append(f.withPrice, in.GetValue())
	if f.menuErr != nil {
		return nil, f.menuErr
	}
	return f.menu, nil
}

func (f *fakeMenuService) SendOrder(_ context.Context, in *Order) (*SendOrderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, in)
	return f.orderResp, nil
}

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

func newTestClient(t *testing.T, svc MenuServiceServer) *Client {
	t.Helper()
	listener := bufconn.Listen(bufSize)
	server := grpc.NewServer(ServerCodec())
	RegisterMenuServiceServer(server, svc)
	go func() {
		_ = server.Serve(listener)
	}()

	dialer := func(context.Context, string) (net.Conn, error) {
		return listener.Dial()
	}
	client, err := Dial("passthrough:///bufnet", time.Second, loggerForTests(), grpc.WithContextDialer(dialer))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		server.Stop()
	})
	return client
}

func TestClient_FetchMenu(t *testing.T) {
	svc := &fakeMenuService{menu: &GetMenuResponse{
		Success: true,
		MenuItems: FromDomainMenu([]domain.MenuItem{
			{ID: "5979224", Article: "A1004292", Name: "Каша гречневая", Price: decimal.NewFromInt(50), FullPath: "ПРОИЗВОДСТВО\\Гарниры"},
			{ID: "9084246", Article: "A1004293", Name: "Конфеты Коровка", Price: decimal.RequireFromString("300.5"), IsWeighted: true, Barcodes: []string{"46", "47"}},
		}),
	}}

	items, err := newTestClient(t, svc).FetchMenu(context.Background(), true).Get()

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []bool{true}, svc.withPrice)
	assert.Equal(t, "A1004292", items[0].Article)
	assert.True(t, decimal.NewFromInt(50).Equal(items[0].Price))
	assert.Equal(t, "ПРОИЗВОДСТВО\\Гарниры", items[0].FullPath)
	assert.Empty(t, items[0].Barcodes)
	assert.True(t, items[1].IsWeighted)
	assert.True(t, decimal.RequireFromString("300.5").Equal(items[1].Price))
	assert.Equal(t, []string{"46", "47"}, items[1].Barcodes)
}

func TestClient_FetchMenuBusinessFailure(t *testing.T) {
	svc := &fakeMenuService{menu: &GetMenuResponse{ErrorMessage: "menu is locked"}}

	res := newTestClient(t, svc).FetchMenu(context.Background(), true)

	require.True(t, res.IsFailure())
	assert.Equal(t, domain.CodeAPI, res.Err().Code)
	assert.Equal(t, "menu is locked", res.Err().Message)
}

func TestClient_FetchMenuStatusError(t *testing.T) {
	svc := &fakeMenuService{menuErr: status.Error(codes.Unavailable, "backend down")}

	res := newTestClient(t, svc).FetchMenu(context.Background(), true)

	require.True(t, res.IsFailure())
	assert.Equal(t, domain.CodeTransport, res.Err().Code)
	assert.Contains(t, res.Err().Message, "backend down")
	assert.Contains(t, res.Err().Message, "Unavailable")
}

func TestClient_FetchMenuNonFinitePrice(t *testing.T) {
	svc := &fakeMenuService{menu: &GetMenuResponse{
		Success:   true,
		MenuItems: []MenuItem{{ID: "1", Article: "A1", Price: math.NaN()}},
	}}

	res := newTestClient(t, svc).FetchMenu(context.Background(), true)

	require.True(t, res.IsFailure())
	assert.Equal(t, domain.CodeTransport, res.Err().Code)
	assert.Contains(t, res.Err().Message, "decode menu")
}

func TestClient_SubmitOrder(t *testing.T) {
	svc := &fakeMenuService{orderResp: &SendOrderResponse{Success: true}}
	order := domain.Order{
		ID: uuid.New(),
		Items: []domain.OrderItem{
			{MenuItemID: "5979224", Quantity: decimal.NewFromInt(1)},
			{MenuItemID: "9084246", Quantity: decimal.RequireFromString("0.408")},
		},
	}

	res := newTestClient(t, svc).SubmitOrder(context.Background(), order)

	require.True(t, res.IsSuccess(), "unexpected failure: %v", res.Err())
	require.Len(t, svc.orders, 1)
	assert.Equal(t, order.ID.String(), svc.orders[0].ID)
	decoded, err := ToDomainOrder(svc.orders[0])
	require.NoError(t, err)
	assert.Equal(t, order.ID, decoded.ID)
	require.Len(t, decoded.Items, 2)
	assert.Equal(t, "9084246", decoded.Items[1].MenuItemID)
	assert.True(t, decimal.RequireFromString("0.408").Equal(decoded.Items[1].Quantity))
}

func TestClient_SubmitOrderRejected(t *testing.T) {
	svc := &fakeMenuService{orderResp: &SendOrderResponse{}}

	res := newTestClient(t, svc).SubmitOrder(context.Background(), domain.Order{ID: uuid.New()})

	require.True(t, res.IsFailure())
	assert.Equal(t, domain.CodeAPI, res.Err().Code)
	assert.Equal(t, "SendOrder was rejected by the server", res.Err().Message)
}

func TestToDomainOrder_Invalid(t *testing.T) {
	tests := []struct {
		name string
		msg  *Order
	}{
		{name: "bad id", msg: &Order{ID: "not-a-uuid"}},
		{name: "infinite quantity", msg: &Order{ID: uuid.NewString(), OrderItems: []OrderItem{{ID: "1", Quantity: math.Inf(1)}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToDomainOrder(tt.msg)
			assert.Error(t, err)
		})
	}
}
