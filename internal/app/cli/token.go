package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	jwtmw "pe_backend/internal/platform/jwt"
)

type tokenCmd struct {
	subject string
	ttl     time.Duration
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "issue an admin token" }
func (*tokenCmd) Usage() string {
	return `pectl token [-sub <name>] [-ttl <duration>]

  Prints a bearer token with the admin scope, signed with ADMIN_JWT_SECRET.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.subject, "sub", "operator", "token subject")
	f.DurationVar(&c.ttl, "ttl", time.Hour, "token lifetime")
}

func (c *tokenCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	secret := os.Getenv(jwtmw.EnvKeyAdminSecret)
	if secret == "" {
		return fail(errors.New(jwtmw.EnvKeyAdminSecret + " is not set"))
	}
	token, err := jwtmw.NewGenerator(secret, c.ttl).GenerateToken(c.subject)
	if err != nil {
		return fail(err)
	}
	fmt.Println(token)
	return subcommands.ExitSuccess
}
