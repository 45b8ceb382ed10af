package main

import (
	"github.com/sirupsen/logrus"

	"codepair-system/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		logrus.Fatal(err)
	}
}
