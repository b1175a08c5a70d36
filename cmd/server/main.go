package main

import (
	"os"

	"chatdesk/internal/app"
)

// @title        Chatdesk API
// @version      1.0
// @description  Multi-tenant chat backend with tiered message delivery.
// @BasePath     /api
func main() {
	os.Exit(app.Run())
}
