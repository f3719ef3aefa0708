// The hourstracker command serves the users API: create, read, rename and
// delete users and accumulate the hours they worked, kept in memory.
package main

import (
	"github.com/patric-chuzhbe/hourstracker/internal/app"
	"github.com/patric-chuzhbe/hourstracker/internal/logger"
)

func main() {
	a, err := app.New()
	if err != nil {
		panic(err)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		logger.Log.Errorln("hourstracker stopped:", err)
		panic(err)
	}
}
