package grpc

import (
	"context"
	"errors"

	"demochat/chat-widget/internal/models"
	"demochat/chat-widget/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const subscriberBuffer = 32

// ChatServer exposes a ChatRepository as the hosted chat_messages table.
type ChatServer struct {
	repo   repository.ChatRepository
	logger *logrus.Logger
}

func NewChatServer(repo repository.ChatRepository, logger *logrus.Logger) *ChatServer {
	return &ChatServer{
		repo:   repo,
		logger: logger,
	}
}

func (s *ChatServer) Fetch(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	chatID := req.GetValue()
	s.logger.WithField("chat_id", chatID).Debug("Fetching chat messages via gRPC")
	if chatID == "" {
		return nil, status.Error(codes.InvalidArgument, "chat id is required")
	}

	messages, err := s.repo.GetChatMessages(ctx, chatID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get chat messages")
		return nil, toStatus("failed to get chat messages", err)
	}

	return messagesToProto(messages), nil
}

func (s *ChatServer) Insert(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	msg, err := messageFromProto(req)
	if err != nil {
		return nil, toStatus("invalid message", err)
	}

	s.logger.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"chat_id":    msg.ChatID,
		"sender_id":  msg.SenderID,
	}).Info("Inserting message via gRPC")

	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		s.logger.WithError(err).Error("Failed to insert message")
		return nil, toStatus("failed to insert message", err)
	}

	return &emptypb.Empty{}, nil
}

func (s *ChatServer) Delete(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id := req.GetValue()
	s.logger.WithField("message_id", id).Info("Deleting message via gRPC")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "message id is required")
	}

	if err := s.repo.DeleteMessage(ctx, id); err != nil {
		s.logger.WithError(err).Error("Failed to delete message")
		return nil, toStatus("failed to delete message", err)
	}

	return &emptypb.Empty{}, nil
}

// Subscribe streams rows inserted into a chat until the client goes away.
// The repository subscription is closed on return.
func (s *ChatServer) Subscribe(req *wrapperspb.StringValue, stream grpc.ServerStream) error {
	ctx := stream.Context()
	chatID := req.GetValue()
	subscriberID := uuid.NewString()
	log := s.logger.WithFields(logrus.Fields{
		"chat_id":       chatID,
		"subscriber_id": subscriberID,
	})
	if chatID == "" {
		return status.Error(codes.InvalidArgument, "chat id is required")
	}

	inserts := make(chan models.Message, subscriberBuffer)
	stop := make(chan struct{})
	sub, err := s.repo.SubscribeInserts(ctx, chatID, func(msg models.Message) {
		select {
		case inserts <- msg:
		case <-stop:
		case <-ctx.Done():
		}
	})
	if err != nil {
		log.WithError(err).Error("Failed to subscribe to inserts")
		return toStatus("failed to subscribe", err)
	}
	// release a callback blocked on a full buffer before waiting on it
	defer func() {
		close(stop)
		if err := sub.Unsubscribe(); err != nil {
			log.WithError(err).Warn("Failed to close insert subscription")
		}
	}()

	log.Info("Subscriber connected")
	for {
		select {
		case <-ctx.Done():
			log.Info("Subscriber disconnected")
			return nil
		case msg := <-inserts:
			if err := stream.SendMsg(messageToProto(msg)); err != nil {
				log.WithError(err).Error("Failed to push insert to stream")
				return err
			}
		}
	}
}

func toStatus(prefix string, err error) error {
	if errors.Is(err, repository.ErrInvalidMessage) {
		return status.Errorf(codes.InvalidArgument, "%s: %v", prefix, err)
	}
	if errors.Is(err, context.Canceled) {
		return status.Errorf(codes.Canceled, "%s: %v", prefix, err)
	}
	return status.Errorf(codes.Internal, "%s: %v", prefix, err)
}
