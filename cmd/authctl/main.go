package main

import (
	"log"
	"os"

	"github.com/dmitrijs2005/clinicauth/internal/authctl"
)

func main() {

	if err := authctl.Run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}

}
