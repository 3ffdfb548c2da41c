package ui

// destinationLaidOutMsg fires after the screen a driver is heading to has
// been pushed or popped, so its geometry can be pulled
type destinationLaidOutMsg struct {
	driverID string
}

// detailImageMsg carries the artwork for the detail screen
type detailImageMsg struct {
	resultID string
	data     []byte
	err      error
}

// pagerClosedMsg is sent when the ov pager exits
type pagerClosedMsg struct {
	err error
}
