package store

import (
	"context"
	"errors"

	"github.com/Shagunjha0111/community-section/internal/model"
)

// SummarizeConversations folds a newest-first message scan into one summary
// per distinct peer. Peer display names come from the sender snapshot when
// the peer wrote the last message; otherwise the directory is consulted,
// falling back to the raw id for users that have since disappeared.
func SummarizeConversations(ctx context.Context, userID string, newestFirst []*model.ChatMessage, dir Users) ([]*model.Conversation, error) {
	seen := make(map[string]bool)
	var out []*model.Conversation

	for _, msg := range newestFirst {
		peer := msg.ToUserID
		peerName := ""
		if msg.FromUser.ID != userID {
			peer = msg.FromUser.ID
			peerName = msg.FromUser.DisplayName
		}
		if seen[peer] {
			continue
		}
		seen[peer] = true

		if peerName == "" {
			ref, err := dir.Get(ctx, peer)
			switch {
			case err == nil:
				peerName = ref.DisplayName
			case errors.Is(err, model.ErrUnknownUser):
				peerName = peer
			default:
				return nil, err
			}
		}

		out = append(out, &model.Conversation{
			Peer:        model.UserRef{ID: peer, DisplayName: peerName},
			LastMessage: msg.Body,
			LastAt:      msg.SentAt,
		})
	}
	return out, nil
}
