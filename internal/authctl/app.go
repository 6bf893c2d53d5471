// Package authctl implements the operator CLI: hashing passwords for manual
// account setup and issuing or inspecting tokens.
package authctl

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/cryptox"
	"github.com/dmitrijs2005/clinicauth/internal/server/auth"
	"golang.org/x/crypto/bcrypt"
)

var ErrUsage = errors.New("usage: authctl hash [-b cost] | token -s secret -l login [-p password] | decode -s secret token")

// Run executes the subcommand in args and writes its result to w.
func Run(args []string, w io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "hash":
		return runHash(args[1:], w)
	case "token":
		return runToken(args[1:], w)
	case "decode":
		return runDecode(args[1:], w)
	default:
		return ErrUsage
	}
}

func newFlagSet(name string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	return fs
}

func runHash(args []string, w io.Writer) error {
	fs := newFlagSet("hash", w)
	cost := fs.Int("b", bcrypt.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}

	hasher, err := cryptox.NewBcryptHasher(*cost)
	if err != nil {
		return err
	}

	password, err := GetPassword(w, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	hash, err := hasher.Hash(string(password))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, hash)
	return err
}

// runToken issues a token for login. The password value must be the one
// stored for the account (normally its hash); it is prompted for when -p is
// not given.
func runToken(args []string, w io.Writer) error {
	fs := newFlagSet("token", w)
	secret := fs.String("s", "", "secret key")
	login := fs.String("l", "", "login")
	password := fs.String("p", "", "stored password value")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *login == "" {
		return ErrUsage
	}

	codec, err := auth.NewTokenCodec([]byte(*secret))
	if err != nil {
		return err
	}

	value := *password
	if value == "" {
		b, err := GetPassword(w, "Enter stored password: ")
		if err != nil {
			return err
		}
		value = string(b)
		common.WipeByteArray(b)
	}

	token, err := codec.Encode(*login, value)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, token)
	return err
}

func runDecode(args []string, w io.Writer) error {
	fs := newFlagSet("decode", w)
	secret := fs.String("s", "", "secret key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return ErrUsage
	}

	codec, err := auth.NewTokenCodec([]byte(*secret))
	if err != nil {
		return err
	}

	sub, ok := codec.Decode(fs.Arg(0))
	if !ok {
		return common.ErrInvalidToken
	}

	_, err = fmt.Fprintln(w, sub.Login)
	return err
}
