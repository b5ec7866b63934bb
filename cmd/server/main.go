package main

import "attendance/internal/app/server"

func main() {
	server.Run()
}
