// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

var errInvalidBooleanArg = errors.New("invalid boolean value")

// parseBoolArg accepts 0/1, false/true, and no/yes in any case.
func parseBoolArg(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("%w %q: use 0/1, false/true, or no/yes", errInvalidBooleanArg, s)
}

// optionalBool is a tri-state flag: unset, true, or false.
type optionalBool struct {
	value *bool
}

var _ pflag.Value = (*optionalBool)(nil)

func (o *optionalBool) String() string {
	if o.value == nil {
		return ""
	}
	return strconv.FormatBool(*o.value)
}

func (o *optionalBool) Set(s string) error {
	b, err := parseBoolArg(s)
	if err != nil {
		return err
	}
	o.value = &b
	return nil
}

func (o *optionalBool) Type() string { return "yes|no" }

// Ptr returns nil while the flag is unset.
func (o *optionalBool) Ptr() *bool { return o.value }

// addOptionalBool registers a tri-state flag on fs.
func addOptionalBool(fs *pflag.FlagSet, name, usage string) *optionalBool {
	o := &optionalBool{}
	fs.Var(o, name, usage)
	return o
}
