package models

import "time"

type Conversation struct {
	ID          uint          `json:"ID"`
	PropertyID  uint          `json:"propertyID"`
	Property    *PropertyCard `json:"property,omitempty"`
	BuyerID     uint          `json:"buyerID"`
	OwnerID     uint          `json:"ownerID"`
	Peer        *User         `json:"peer,omitempty"` // the other participant, from the viewer's side
	LastMessage *Message      `json:"lastMessage,omitempty"`
	UnreadCount int           `json:"unreadCount"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// PeerID returns the other participant for the given viewer.
func (c *Conversation) PeerID(viewerID uint) uint {
	if c.BuyerID == viewerID {
		return c.OwnerID
	}
	return c.BuyerID
}
