package commands

import (
	"bufio"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/export"
	"github.com/metahq/metahq/hq"
	"github.com/metahq/metahq/logger"
	"github.com/metahq/metahq/ontology"
	"github.com/metahq/metahq/resolve"
	"github.com/metahq/metahq/store"
)

var (
	retrieveTerms    string
	retrieveMode     string
	retrieveLevel    string
	retrieveFilters  string
	retrieveMetadata string
	retrieveFormat   string
	retrieveOutput   string
)

// RetrieveCmd represents the retrieve command
var RetrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Resolve annotations for a set of ontology terms",
	Long: `Resolve annotations for a set of ontology terms.

Each subcommand retrieves one annotation attribute. Terms are given as a
comma-separated list of IDs, the marker "all", or @file.txt with one term
per line.

Modes:
  direct    - only curator-asserted positives, untouched
  propagate - positives for each term and all of its descendants
  label     - every annotated entity labeled 1/0/-1 per term, with healthy
              controls labeled 2 (tissue/disease/celltype only)

Examples:
  metahq retrieve tissue --terms UBERON:0000948 --mode propagate
  metahq retrieve disease --terms all --mode label --level series
  metahq retrieve tissue --terms @terms.txt --filters "species=homo sapiens,ecode=expert"
  metahq retrieve sex --terms female --metadata series,title --format csv`,
}

func init() {
	flags := RetrieveCmd.PersistentFlags()
	flags.StringVarP(&retrieveTerms, "terms", "t", "all", "Comma-separated term IDs, 'all', or @file with one term per line")
	flags.StringVarP(&retrieveMode, "mode", "m", "direct", "Resolution mode (direct/propagate/label)")
	flags.StringVarP(&retrieveLevel, "level", "l", "sample", "Entity level (sample/series)")
	flags.StringVar(&retrieveFilters, "filters", "", "Edge filters as key=value pairs (species, technology, ecode)")
	flags.StringVar(&retrieveMetadata, "metadata", "", "Comma-separated metadata columns to join")
	flags.StringVarP(&retrieveFormat, "format", "f", "tsv", "Output format (tsv/csv/json)")
	flags.StringVarP(&retrieveOutput, "output", "o", "", "Write to file instead of stdout")

	for _, attribute := range hq.Attributes() {
		RetrieveCmd.AddCommand(newAttributeCommand(attribute))
	}
}

func newAttributeCommand(attribute hq.Attribute) *cobra.Command {
	return &cobra.Command{
		Use:   string(attribute),
		Short: "Retrieve " + string(attribute) + " annotations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRetrieve(cmd, attribute)
		},
	}
}

func runRetrieve(cmd *cobra.Command, attribute hq.Attribute) error {
	mode, err := resolve.ParseMode(retrieveMode)
	if err != nil {
		return err
	}
	level, err := parseLevel(retrieveLevel)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(retrieveFormat)
	if err != nil {
		return err
	}
	filter, err := store.ParseFilter(retrieveFilters)
	if err != nil {
		return err
	}
	terms, err := parseTerms(retrieveTerms)
	if err != nil {
		return err
	}

	conn, err := openDatabase()
	if err != nil {
		return err
	}
	defer conn.Close()

	var graph *ontology.Graph
	if attribute.Hierarchical() {
		graph, err = ontology.Load(conn, logger.Logger)
		if err != nil {
			return errors.Wrap(err, "failed to load ontology")
		}
	}

	st, err := store.Load(conn, attribute, logger.Logger)
	if err != nil {
		return errors.Wrap(err, "failed to load annotations")
	}

	table, err := resolve.New(st, graph, logger.Logger).Resolve(cmd.Context(), resolve.Request{
		Terms:  terms,
		Mode:   mode,
		Level:  level,
		Filter: filter,
	})
	if err != nil {
		return err
	}

	if fields := splitList(retrieveMetadata); len(fields) > 0 {
		if err := resolve.JoinMetadata(table, st, fields); err != nil {
			return err
		}
	}

	if retrieveOutput != "" {
		if err := export.WriteFile(retrieveOutput, table, format); err != nil {
			return err
		}
		logger.Infow("Wrote result table",
			"path", retrieveOutput,
			"rows", len(table.Entities),
			"terms", len(table.Terms),
		)
		return nil
	}
	return export.Write(cmd.OutOrStdout(), table, format)
}

func parseLevel(s string) (store.Level, error) {
	for _, level := range hq.Levels() {
		if strings.EqualFold(s, level) {
			return store.Level(level), nil
		}
	}
	return "", errors.Newf("expected level in %v, got %q", hq.Levels(), s)
}

// parseTerms splits a comma-separated term list, or reads terms from a file
// when the value starts with @. The "all" marker passes through.
func parseTerms(s string) ([]string, error) {
	if strings.HasPrefix(s, "@") {
		return readTermsFile(strings.TrimPrefix(s, "@"))
	}
	return splitList(s), nil
}

// readTermsFile reads one term per line, skipping blanks and # comments.
func readTermsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read terms file %s", path)
	}
	defer f.Close()

	var terms []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read terms file %s", path)
	}
	if len(terms) == 0 {
		return nil, errors.Newf("terms file %s contains no terms", path)
	}
	return terms, nil
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
