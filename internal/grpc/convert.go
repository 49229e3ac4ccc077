package grpc

import (
	"fmt"

	"demochat/chat-widget/internal/models"
	"demochat/chat-widget/internal/repository"

	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"
)

func messageToProto(msg models.Message) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":         structpb.NewStringValue(msg.ID),
		"chat_id":    structpb.NewStringValue(msg.ChatID),
		"sender_id":  structpb.NewStringValue(msg.SenderID),
		"content":    structpb.NewStringValue(msg.Content),
		"sent_at":    structpb.NewStringValue(msg.SentAt),
		"updated_at": structpb.NewStringValue(msg.UpdatedAt),
	}}
}

func messageFromProto(s *structpb.Struct) (models.Message, error) {
	fields := s.GetFields()
	str := func(name string) string { return fields[name].GetStringValue() }
	msg := models.Message{
		ID:        str("id"),
		ChatID:    str("chat_id"),
		SenderID:  str("sender_id"),
		Content:   str("content"),
		SentAt:    str("sent_at"),
		UpdatedAt: str("updated_at"),
	}
	if msg.ID == "" {
		return models.Message{}, fmt.Errorf("%w: missing id", repository.ErrInvalidMessage)
	}
	return msg, nil
}

func messagesToProto(messages []models.Message) *structpb.ListValue {
	return &structpb.ListValue{Values: lo.Map(messages, func(m models.Message, _ int) *structpb.Value {
		return structpb.NewStructValue(messageToProto(m))
	})}
}

func messagesFromProto(list *structpb.ListValue) ([]models.Message, error) {
	messages := make([]models.Message, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		msg, err := messageFromProto(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
