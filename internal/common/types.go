package common

// ConversationKey identifies a two-party conversation as seen by one
// viewer. The pair is unordered; the viewer determines which side is
// "other" when the conversation is rendered. Value type with defined
// equality, so it can be used directly as a map key.
type ConversationKey struct {
	ViewerID uint64
	OtherID  uint64
}

func NewConversationKey(viewerID, otherID uint64) ConversationKey {
	return ConversationKey{ViewerID: viewerID, OtherID: otherID}
}

// Pair returns the participant ids in canonical (low, high) order.
func (k ConversationKey) Pair() (uint64, uint64) {
	if k.ViewerID < k.OtherID {
		return k.ViewerID, k.OtherID
	}
	return k.OtherID, k.ViewerID
}

// SamePair reports whether two keys cover the same unordered pair of
// participants, regardless of who is viewing.
func (k ConversationKey) SamePair(o ConversationKey) bool {
	aLo, aHi := k.Pair()
	bLo, bHi := o.Pair()
	return aLo == bLo && aHi == bHi
}

// Contains reports whether userID is one of the two participants.
func (k ConversationKey) Contains(userID uint64) bool {
	return userID == k.ViewerID || userID == k.OtherID
}

// Attachment is a reference to an uploaded object. The message holds
// the URL, never the bytes.
type Attachment struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}
