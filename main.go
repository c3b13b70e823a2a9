package main

import (
	"fmt"

	"github.com/sheetcore/reactive-sheets/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Println(err.Error())
		return
	}
}
