package notification

// MaxListLimit caps a single inbox page.
const MaxListLimit = 200

// ListOptions provides filtering options for listing notifications.
type ListOptions struct {
	Type   *Type
	Status *Status
	Limit  int
}
