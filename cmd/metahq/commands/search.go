package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/logger"
	"github.com/metahq/metahq/ontology"
	"github.com/metahq/metahq/search"
)

var (
	searchOntology string
	searchType     string
	searchLimit    int
)

// SearchCmd represents the search command
var SearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search ontology terms by name and synonyms",
	Long: `Search ontology terms by name and synonyms.

Results are ranked with BM25+ over term names and synonyms, with names
weighted above synonyms and synonym weight following OBO scope
specificity (EXACT > NARROW > BROAD > RELATED).

Examples:
  metahq search "heart muscle"
  metahq search cardiomyopathy --ontology MONDO
  metahq search neuron --type celltype --limit 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	SearchCmd.Flags().StringVar(&searchOntology, "ontology", "", "Restrict to one ontology (UBERON/MONDO/CL)")
	SearchCmd.Flags().StringVar(&searchType, "type", "", "Restrict to one term type (tissue/disease/celltype)")
	SearchCmd.Flags().IntVarP(&searchLimit, "limit", "k", search.DefaultLimit, "Maximum number of hits")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	conn, err := openDatabase()
	if err != nil {
		return err
	}
	defer conn.Close()

	graph, err := ontology.Load(conn, logger.Logger)
	if err != nil {
		return errors.Wrap(err, "failed to load ontology")
	}
	synonyms, err := ontology.LoadSynonyms(conn)
	if err != nil {
		return errors.Wrap(err, "failed to load synonyms")
	}

	hits, err := search.NewIndex(graph, synonyms).Search(query, search.Options{
		Ontology: searchOntology,
		Type:     searchType,
		Limit:    searchLimit,
	})
	if err != nil {
		return err
	}

	rows := pterm.TableData{{"TERM ID", "NAME", "TYPE", "SCORE", "SYNONYMS"}}
	for _, hit := range hits {
		var names []string
		for _, syn := range hit.Synonyms {
			names = append(names, syn.Text)
		}
		rows = append(rows, []string{
			hit.TermID,
			hit.Name,
			hit.Type,
			fmt.Sprintf("%.2f", hit.Score),
			truncate(strings.Join(names, "; "), 60),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

// truncate shortens s to max runes. Synonyms carry Greek letters and
// accented names, so byte slicing would split multi-byte runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
