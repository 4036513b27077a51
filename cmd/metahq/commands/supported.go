package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/metahq/metahq/hq"
)

var supportedYAML bool

// SupportedCmd represents the supported command
var SupportedCmd = &cobra.Command{
	Use:   "supported",
	Short: "List supported attributes, filters and formats",
	Long: `List the attributes, evidence codes, species, technologies, levels,
modes and output formats this build supports.`,
	RunE: runSupported,
}

func init() {
	SupportedCmd.Flags().BoolVar(&supportedYAML, "yaml", false, "Output as YAML")
}

type supportedInfo struct {
	Attributes   []string `yaml:"attributes"`
	Ontologies   []string `yaml:"ontologies"`
	Ecodes       []string `yaml:"evidence_codes"`
	Species      []string `yaml:"species"`
	Technologies []string `yaml:"technologies"`
	Levels       []string `yaml:"levels"`
	Modes        []string `yaml:"modes"`
	Formats      []string `yaml:"formats"`
	SexTerms     []string `yaml:"sex_terms"`
	AgeGroups    []string `yaml:"age_groups"`
	DataVersions string   `yaml:"data_versions"`
}

func collectSupported() supportedInfo {
	attributes := make([]string, 0, len(hq.Attributes()))
	ontologies := make([]string, 0, 3)
	for _, attr := range hq.Attributes() {
		attributes = append(attributes, string(attr))
		if name, ok := attr.Ontology(); ok {
			ontologies = append(ontologies, name)
		}
	}
	return supportedInfo{
		Attributes:   attributes,
		Ontologies:   ontologies,
		Ecodes:       hq.Ecodes(),
		Species:      hq.Species(),
		Technologies: hq.Technologies(),
		Levels:       hq.Levels(),
		Modes:        hq.Modes(),
		Formats:      hq.Formats(),
		SexTerms:     hq.SexTerms(),
		AgeGroups:    hq.AgeGroups(),
		DataVersions: hq.SupportedDataVersions,
	}
}

func runSupported(cmd *cobra.Command, args []string) error {
	info := collectSupported()

	if supportedYAML {
		data, err := yaml.Marshal(info)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Attributes:      %s\n", strings.Join(info.Attributes, ", "))
	fmt.Fprintf(out, "Ontologies:      %s\n", strings.Join(info.Ontologies, ", "))
	fmt.Fprintf(out, "Evidence codes:  %s\n", strings.Join(info.Ecodes, ", "))
	fmt.Fprintf(out, "Species:         %s\n", strings.Join(info.Species, ", "))
	fmt.Fprintf(out, "Technologies:    %s\n", strings.Join(info.Technologies, ", "))
	fmt.Fprintf(out, "Levels:          %s\n", strings.Join(info.Levels, ", "))
	fmt.Fprintf(out, "Modes:           %s\n", strings.Join(info.Modes, ", "))
	fmt.Fprintf(out, "Formats:         %s\n", strings.Join(info.Formats, ", "))
	fmt.Fprintf(out, "Sex terms:       %s\n", strings.Join(info.SexTerms, ", "))
	fmt.Fprintf(out, "Age groups:      %s\n", strings.Join(info.AgeGroups, ", "))
	fmt.Fprintf(out, "Data versions:   %s\n", info.DataVersions)
	return nil
}
