package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Konsultn-Engineering/dynschema/dialect"
	"github.com/Konsultn-Engineering/dynschema/migrate"
	"github.com/Konsultn-Engineering/dynschema/schema"
)

type session struct {
	reg     *schema.Registry
	journal *migrate.Journal
	dialect dialect.Dialect
	out     io.Writer
}

type usageError struct {
	usage string
}

func (e usageError) Error() string {
	return "usage: " + e.usage
}

func (s *session) exec(tokens []token) error {
	if len(tokens) == 0 {
		return nil
	}
	cmd, args := tokens[0].text, tokens[1:]

	switch cmd {
	case "register":
		if len(args) != 1 {
			return usageError{"register <type>"}
		}
		_, err := s.reg.RegisterType(args[0].text)
		return err

	case "add-field":
		if len(args) != 3 {
			return usageError{"add-field <type> <field> <default>"}
		}
		return s.reg.AddField(args[0].text, args[1].text, parseValue(args[2]))

	case "add-relationship":
		if len(args) != 4 && len(args) != 5 {
			return usageError{"add-relationship <one-to-many|many-to-many> <owner> <target> <name> [<backref>]"}
		}
		kind, err := schema.ParseRelationshipKind(args[0].text)
		if err != nil {
			return err
		}
		backref := ""
		if len(args) == 5 {
			backref = args[4].text
		}
		return s.reg.AddRelationship(kind, args[1].text, args[2].text, args[3].text, backref)

	case "create":
		if len(args) < 1 {
			return usageError{"create <type> [field=value ...]"}
		}
		overrides := make(map[string]any, len(args)-1)
		for _, arg := range args[1:] {
			field, value, ok := strings.Cut(arg.text, "=")
			if !ok || field == "" {
				return fmt.Errorf("bad override %q, want field=value", arg.text)
			}
			overrides[field] = parseValue(token{text: value, quoted: arg.quoted})
		}
		inst, err := s.reg.CreateInstance(args[0].text, overrides)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(s.out, inst.ID)
		return err

	case "link":
		if len(args) != 3 {
			return usageError{"link <instanceA-id> <relationship> <instanceB-id>"}
		}
		return s.reg.LinkByID(args[0].text, args[1].text, args[2].text)

	case "traverse":
		if len(args) != 2 {
			return usageError{"traverse <instance-id> <relationship-or-backref>"}
		}
		seq, err := s.reg.TraverseByID(args[0].text, args[1].text)
		if err != nil {
			return err
		}
		for inst := range seq {
			if _, err := fmt.Fprintln(s.out, inst.ID); err != nil {
				return err
			}
		}
		return nil

	case "ddl":
		if len(args) != 0 {
			return usageError{"ddl"}
		}
		_, err := io.WriteString(s.out, s.journal.SQL())
		return err

	case "dump":
		if len(args) != 0 {
			return usageError{"dump"}
		}
		_, err := io.WriteString(s.out, migrate.Render(s.dialect, migrate.Rows(s.reg)))
		return err

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
