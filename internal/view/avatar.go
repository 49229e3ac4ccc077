package view

import (
	"sync"

	"demochat/chat-widget/internal/models"
)

const DefaultAvatar = "https://www.gravatar.com/avatar/?d=mp"

// AvatarCache resolves a sender id to an avatar URL, falling back to a
// placeholder for unknown senders.
type AvatarCache struct {
	mu          sync.RWMutex
	avatars     map[string]string
	placeholder string
}

func NewAvatarCache(users []models.User, placeholder string) *AvatarCache {
	if placeholder == "" {
		placeholder = DefaultAvatar
	}
	c := &AvatarCache{avatars: make(map[string]string, len(users)), placeholder: placeholder}
	for _, u := range users {
		c.Put(u.ID, u.Avatar)
	}
	return c
}

func (c *AvatarCache) Put(senderID, avatar string) {
	if avatar == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.avatars[senderID] = avatar
}

func (c *AvatarCache) Get(senderID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if avatar, ok := c.avatars[senderID]; ok {
		return avatar
	}
	return c.placeholder
}
