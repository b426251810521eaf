package main

import (
	"os"

	"github.com/GoShelf-Admin/GoShelf-Admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
