// Package main provides a one-shot utility for approval grant key generation.
//
// It emits the Ed25519 keypair used to sign and verify approval grants.
package main

import (
	"os"

	"github.com/ajofund/ajo/internal/cmd/approvalkey"
	"github.com/ajofund/ajo/internal/platform/config"
)

func main() {
	if err := approvalkey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate approval grant key: %v", err)
	}
}
