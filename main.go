package main

import "diskscope/internal/app"

func main() {
	app.Run()
}
