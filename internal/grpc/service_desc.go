package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The ChatMessages service is described with protobuf well-known types only,
// so no generated stubs are needed on either side.
const (
	serviceName = "demochat.v1.ChatMessages"

	fetchMethod     = "/" + serviceName + "/Fetch"
	insertMethod    = "/" + serviceName + "/Insert"
	deleteMethod    = "/" + serviceName + "/Delete"
	subscribeMethod = "/" + serviceName + "/Subscribe"
)

// ChatMessagesServer is the server API for the ChatMessages service.
type ChatMessagesServer interface {
	Fetch(ctx context.Context, chatID *wrapperspb.StringValue) (*structpb.ListValue, error)
	Insert(ctx context.Context, msg *structpb.Struct) (*emptypb.Empty, error)
	Delete(ctx context.Context, id *wrapperspb.StringValue) (*emptypb.Empty, error)
	Subscribe(chatID *wrapperspb.StringValue, stream grpc.ServerStream) error
}

func RegisterChatMessagesServer(s grpc.ServiceRegistrar, srv ChatMessagesServer) {
	s.RegisterService(&chatMessagesServiceDesc, srv)
}

var chatMessagesServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ChatMessagesServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Fetch", Handler: fetchHandler},
		{MethodName: "Insert", Handler: insertHandler},
		{MethodName: "Delete", Handler: deleteHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Subscribe", Handler: subscribeHandler, ServerStreams: true},
	},
	Metadata: "demochat/v1/chat_messages",
}

func fetchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatMessagesServer).Fetch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fetchMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChatMessagesServer).Fetch(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func insertHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatMessagesServer).Insert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: insertMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChatMessagesServer).Insert(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func deleteHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatMessagesServer).Delete(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: deleteMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChatMessagesServer).Delete(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ChatMessagesServer).Subscribe(in, stream)
}
