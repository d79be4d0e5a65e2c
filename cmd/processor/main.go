// Command processor is the subordinate process a generated cluster
// script invokes: it decodes a job's serialized callable payload,
// resolves the token against the registry built by flowkit.Register/
// RegisterArray, and runs the callable, exiting non-zero on failure so
// the cluster scheduler marks the step failed.
//
// Real deployments fork this file to import whichever package builds
// their own job graph and call its constructor for the registration
// side effect before resolving a token. As shipped it imports no job
// package, so the registry is empty and every token fails to resolve.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/flowkit/flowkit"
	"github.com/flowkit/flowkit/internal/infrastructure/callable"
	"github.com/flowkit/flowkit/internal/infrastructure/logger"
)

func main() {
	log := logger.Setup(os.Getenv("FLOWKIT_LOG_LEVEL"))

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: processor <payload>.pkl [array-index]")
		os.Exit(2)
	}

	payloadPath := os.Args[1]
	data, err := os.ReadFile(payloadPath)
	if err != nil {
		log.Error().Err(err).Str("path", payloadPath).Msg("reading payload")
		os.Exit(1)
	}

	payload, err := callable.Decode(data)
	if err != nil {
		log.Error().Err(err).Msg("decoding payload")
		os.Exit(1)
	}

	fn0, fn1, isArray, err := flowkit.Resolve(payload.Token)
	if err != nil {
		log.Error().Err(err).Str("token", payload.Token).Msg("resolving callable")
		os.Exit(1)
	}

	if isArray != payload.IsArray {
		log.Error().Str("token", payload.Token).Msg("registry/payload array-ness mismatch")
		os.Exit(1)
	}

	var value any
	if isArray {
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: processor <payload>.pkl <array-index>")
			os.Exit(2)
		}
		index, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Error().Err(err).Str("index", os.Args[2]).Msg("parsing array index")
			os.Exit(2)
		}
		value, err = fn1(index)
		if err != nil {
			log.Error().Err(err).Str("token", payload.Token).Int("index", index).Msg("job body failed")
			os.Exit(1)
		}
	} else {
		value, err = fn0()
		if err != nil {
			log.Error().Err(err).Str("token", payload.Token).Msg("job body failed")
			os.Exit(1)
		}
	}

	log.Info().Str("token", payload.Token).Interface("value", value).Msg("job body completed")
}
