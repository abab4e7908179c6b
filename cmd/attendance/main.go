// Command attendance is the admin CLI for the attendance store: it lists
// users and moves user documents in and out of the SQLite database without
// going through the HTTP server.
package main

func main() {
	Execute()
}
