package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/delivery"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/directory"
)

// newContactsCmd creates the `opsclaw contacts` command group.
func newContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage the team directory",
		Long: `Manage the contacts the agents resolve people against: alert routing,
expert search and outbound calls all look names up here.

Examples:
  opsclaw contacts list
  opsclaw contacts add
  opsclaw contacts seed      # starter team for demos`,
	}

	cmd.AddCommand(
		newContactsListCmd(),
		newContactsAddCmd(),
		newContactsSeedCmd(),
	)
	return cmd
}

func newContactsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all contacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sys, err := openDirectory(cmd)
			if err != nil {
				return err
			}
			defer sys.Close()

			contacts, err := sys.dir.Contacts()
			if err != nil {
				return err
			}
			if len(contacts) == 0 {
				fmt.Println("No contacts yet. Run: opsclaw contacts add")
				return nil
			}

			fmt.Printf("%-14s %-16s %-28s %s\n", "NAME", "ROLE", "EXPERTISE", "PHONE")
			for _, c := range contacts {
				fmt.Printf("%-14s %-16s %-28s %s\n",
					c.Name, c.Role, strings.Join(c.Expertise, ","), c.CallNumber())
			}
			return nil
		},
	}
}

func newContactsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Add a contact interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sys, err := openDirectory(cmd)
			if err != nil {
				return err
			}
			defer sys.Close()

			var (
				name      string
				role      string
				expertise string
				discordID string
				phone     string
			)

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Name").
						Validate(func(v string) error {
							if strings.TrimSpace(v) == "" {
								return fmt.Errorf("name is required")
							}
							return nil
						}).
						Value(&name),
					huh.NewSelect[string]().
						Title("Role").
						Options(
							huh.NewOption("Developer", "developer"),
							huh.NewOption("DevOps lead", "devops_lead"),
							huh.NewOption("Team lead", "team_lead"),
							huh.NewOption("Product manager", "product_manager"),
							huh.NewOption("Designer", "designer"),
						).
						Value(&role),
					huh.NewInput().
						Title("Expertise").
						Description("Comma-separated keywords (python, devops, ...)").
						Value(&expertise),
					huh.NewInput().
						Title("Discord user ID").
						Value(&discordID),
					huh.NewInput().
						Title("Phone").
						Description("E.164 format, e.g. +15551234567").
						Value(&phone),
				),
			).WithTheme(huh.ThemeDracula())

			if err := form.Run(); err != nil {
				return err
			}

			contact := directory.Contact{
				Name:    strings.TrimSpace(name),
				Role:    role,
				Discord: strings.TrimSpace(discordID),
				Phone:   strings.TrimSpace(phone),
			}
			for _, e := range strings.Split(expertise, ",") {
				if e = strings.TrimSpace(e); e != "" {
					contact.Expertise = append(contact.Expertise, e)
				}
			}

			contacts, err := sys.dir.Contacts()
			if err != nil {
				return err
			}
			contacts = append(contacts, contact)
			if err := sys.dir.Save(contacts); err != nil {
				return err
			}

			fmt.Printf("Added %s (%s)\n", contact.Name, contact.Role)
			return nil
		},
	}
}

// seedContacts is the starter team used by the demo scenarios.
var seedContacts = []directory.Contact{
	{Name: "Alice", Role: "team_lead", Expertise: []string{"architecture", "backend"}},
	{Name: "John", Role: "developer", Expertise: []string{"python", "api"}},
	{Name: "Dana", Role: "devops_lead", Expertise: []string{"devops", "kubernetes", "deploy"}},
	{Name: "Rithvik", Role: "developer", Expertise: []string{"frontend", "react"}},
	{Name: "Sarah", Role: "product_manager", Expertise: []string{"product", "roadmap"}},
}

func newContactsSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed a starter team for demos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sys, err := openDirectory(cmd)
			if err != nil {
				return err
			}
			defer sys.Close()

			existing, err := sys.dir.Contacts()
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				return fmt.Errorf("directory already has %d contacts, refusing to seed", len(existing))
			}
			if err := sys.dir.Save(seedContacts); err != nil {
				return err
			}
			fmt.Printf("Seeded %d contacts.\n", len(seedContacts))
			return nil
		},
	}
}

// openDirectory builds the system without the audit log, for directory-only
// subcommands.
func openDirectory(cmd *cobra.Command) (*system, error) {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := buildLogger(cmd, cfg, true)
	return buildSystem(cfg, logger, delivery.NewSimulated(logger), false)
}
