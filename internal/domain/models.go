package domain

// AdDetail holds the fields extracted from a single listing page.
// Title, Price and Description are required: a listing missing any of them is
// discarded whole rather than reported partially. Seller is optional.
type AdDetail struct {
	Title       string
	Price       string
	Description string
	Seller      string
	URL         string
}

// NotificationPayload is one run's notification for a single search target.
// Every chunk respects the batcher's size bound; chunk 0 gets the subject
// line prepended by the transport that delivers it.
type NotificationPayload struct {
	Subject string
	Chunks  []string
}
