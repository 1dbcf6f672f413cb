package main

import (
	"strconv"
)

// modifierFlag is a boolean flag that appends its token to a shared list
// each time it is given, keeping the command line order.
type modifierFlag struct {
	token     string
	modifiers *[]string
}

func (f *modifierFlag) Set(value string) error {
	on, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}

	if on {
		*f.modifiers = append(*f.modifiers, f.token)
	}

	return nil
}

func (f *modifierFlag) String() string {
	return "false"
}

func (f *modifierFlag) Type() string {
	return "bool"
}
