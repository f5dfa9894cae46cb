package main

import (
	"os"

	"github.com/iWorld-y/search_chat/app/search_chat/pkg/logger"
)

func main() {
	if err := Execute(); err != nil {
		logger.Log.Error(err)
		os.Exit(1)
	}
}
