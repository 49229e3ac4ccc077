package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"demochat/chat-widget/internal/models"
	"demochat/chat-widget/internal/repository"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ChatClient is a repository.ChatRepository backed by a remote ChatServer.
type ChatClient struct {
	conn   grpc.ClientConnInterface
	logger *logrus.Logger
}

// Dial creates a client for the chat service at address. The connection is
// established lazily.
func Dial(address string, logger *logrus.Logger, opts ...grpc.DialOption) (*ChatClient, *grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("dial chat service %s: %w", address, err)
	}
	return NewChatClient(conn, logger), conn, nil
}

func NewChatClient(conn grpc.ClientConnInterface, logger *logrus.Logger) *ChatClient {
	return &ChatClient{conn: conn, logger: logger}
}

func (c *ChatClient) GetChatMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, fetchMethod, wrapperspb.String(chatID), out); err != nil {
		return nil, fromStatus(err)
	}
	return messagesFromProto(out)
}

func (c *ChatClient) CreateMessage(ctx context.Context, msg models.Message) error {
	return fromStatus(c.conn.Invoke(ctx, insertMethod, messageToProto(msg), new(emptypb.Empty)))
}

func (c *ChatClient) DeleteMessage(ctx context.Context, id string) error {
	return fromStatus(c.conn.Invoke(ctx, deleteMethod, wrapperspb.String(id), new(emptypb.Empty)))
}

// SubscribeInserts opens the server stream and calls onInsert from a
// background goroutine until Unsubscribe or the stream ends.
func (c *ChatClient) SubscribeInserts(ctx context.Context, chatID string, onInsert func(models.Message)) (repository.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := c.conn.NewStream(ctx, &chatMessagesServiceDesc.Streams[0], subscribeMethod)
	if err != nil {
		cancel()
		return nil, fromStatus(err)
	}
	if err := stream.SendMsg(wrapperspb.String(chatID)); err != nil {
		cancel()
		return nil, fromStatus(err)
	}
	if err := stream.CloseSend(); err != nil {
		cancel()
		return nil, fromStatus(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			in := new(structpb.Struct)
			if err := stream.RecvMsg(in); err != nil {
				if !errors.Is(err, io.EOF) && status.Code(err) != codes.Canceled {
					c.logger.WithError(err).WithField("chat_id", chatID).Warn("Insert stream closed")
				}
				return
			}
			msg, err := messageFromProto(in)
			if err != nil {
				c.logger.WithError(err).Debug("Ignoring malformed insert")
				continue
			}
			onInsert(msg)
		}
	}()

	return repository.SubscriptionFunc(func() error {
		cancel()
		<-done
		return nil
	}), nil
}

func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
		return fmt.Errorf("%w: %s", repository.ErrInvalidMessage, st.Message())
	}
	return err
}
