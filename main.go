package main

import (
	"os"

	"github.com/StoryBB/permissions/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
