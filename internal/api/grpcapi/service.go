package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName: полное имя gRPC-сервиса меню.
const ServiceName = "sms.test.SmsTestService"

// Полные имена методов сервиса.
const (
	MethodGetMenu   = "/" + ServiceName + "/GetMenu"
	MethodSendOrder = "/" + ServiceName + "/SendOrder"
)

// MenuServiceServer: серверная сторона сервиса меню.
type MenuServiceServer interface {
	GetMenu(ctx context.Context, withPrice *wrapperspb.BoolValue) (*GetMenuResponse, error)
	SendOrder(ctx context.Context, order *Order) (*SendOrderResponse, error)
}

// RegisterMenuServiceServer регистрирует реализацию сервиса на gRPC-сервере.
// Сервер должен быть создан с опцией ServerCodec.
func RegisterMenuServiceServer(s grpc.ServiceRegistrar, srv MenuServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc описывает сервис для grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MenuServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetMenu", Handler: getMenuHandler},
		{MethodName: "SendOrder", Handler: sendOrderHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func getMenuHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BoolValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MenuServiceServer).GetMenu(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodGetMenu}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MenuServiceServer).GetMenu(ctx, req.(*wrapperspb.BoolValue))
	}
	return interceptor(ctx, in, info, handler)
}

func sendOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Order)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MenuServiceServer).SendOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodSendOrder}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MenuServiceServer).SendOrder(ctx, req.(*Order))
	}
	return interceptor(ctx, in, info, handler)
}
