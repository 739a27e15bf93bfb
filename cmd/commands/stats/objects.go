package stats

import (
	"fmt"

	"nathanbeddoewebdev/xostats/internal/stats/domain"

	"github.com/spf13/cobra"
)

func ObjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "objects",
		Short: "List the running hosts and VMs that can be selected",
		Long: `List the running hosts and VMs that can be selected for a stats run.

Examples:
  xostats stats objects
  xostats stats objects --type host -o json`,
		Args:         cobra.NoArgs,
		RunE:         runObjects,
		SilenceUsage: true,
	}

	cmd.Flags().String("type", "", "Only list this type: host or vm")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runObjects(cmd *cobra.Command, args []string) error {
	typeFlag, _ := cmd.Flags().GetString("type")
	var types []domain.ObjectType
	if typeFlag == "" {
		types = []domain.ObjectType{domain.ObjectHost, domain.ObjectVM}
	} else {
		t, ok := domain.ParseObjectType(typeFlag)
		if !ok {
			return fmt.Errorf("unknown object type %q (valid: host, vm)", typeFlag)
		}
		types = []domain.ObjectType{t}
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var objects []domain.Object
	for _, t := range types {
		list := s.backend.RunningVMs
		if t == domain.ObjectHost {
			list = s.backend.RunningHosts
		}
		found, err := list(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list running %ss: %w", t, err)
		}
		objects = append(objects, found...)
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "json" {
		return printObjectsJSON(cmd, objects)
	}
	printObjectsTable(cmd, objects)
	return nil
}
