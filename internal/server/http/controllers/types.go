package controllers

// Common request/response types for HTTP controllers

// queueReq identifies one account in one venue's queue.
type queueReq struct {
	Venue   string `json:"venue"`
	Account string `json:"account"`
}

// ensureAccountReq represents a request to create an account record.
type ensureAccountReq struct {
	Account     string `json:"account"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

// accountResp is the public view of an account record.
type accountResp struct {
	Account     string `json:"account"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
	NoShows     int    `json:"no_shows"`
	Banned      bool   `json:"banned"`
	Loyalty     int    `json:"loyalty"`
}

// waitTimeResp is the estimate returned by the wait-time endpoint.
type waitTimeResp struct {
	Venue       string  `json:"venue"`
	QueueLength int     `json:"queue_length"`
	WaitMinutes float64 `json:"wait_minutes"`
}
