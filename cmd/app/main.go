package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"captable/internal/ai"
	"captable/internal/core"
	"captable/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	shareholders := core.NewShareholderService(pool)
	classes := core.NewShareClassService(pool)
	issuances := core.NewIssuanceService(pool)
	snapshots := core.NewSnapshotService(shareholders, classes, issuances)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set")
	}
	agent := ai.NewAgent(apiKey)

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "summary":
		companyID := companyArg(2)
		snapshot, err := snapshots.Load(ctx, companyID)
		if err != nil {
			log.Fatalf("Failed to load company records: %v", err)
		}
		printCapTable(snapshot.CapTable())

	case "export":
		companyID := companyArg(2)
		snapshot, err := snapshots.Load(ctx, companyID)
		if err != nil {
			log.Fatalf("Failed to load company records: %v", err)
		}
		write := core.WriteHoldingsCSV
		if len(os.Args) > 3 && os.Args[3] == "classes" {
			write = core.WriteClassSummaryCSV
		}
		if err := write(os.Stdout, snapshot.CapTable()); err != nil {
			log.Fatalf("Export failed: %v", err)
		}

	case "import":
		companyID := companyArg(2)
		if len(os.Args) < 4 {
			log.Fatal("Usage: app import <company-id> <file.csv>")
		}
		data, err := os.ReadFile(os.Args[3])
		if err != nil {
			log.Fatalf("Failed to read %s: %v", os.Args[3], err)
		}
		snapshot, err := snapshots.Load(ctx, companyID)
		if err != nil {
			log.Fatalf("Failed to load company records: %v", err)
		}
		parsed, report := core.ParseIssuanceCSV(string(data), companyID, snapshot.Shareholders, snapshot.ShareClasses)
		if len(parsed) > 0 {
			if err := issuances.CreateBatch(ctx, parsed); err != nil {
				log.Fatalf("Import failed: %v", err)
			}
		}
		fmt.Printf("Imported %d issuances, skipped %d lines.\n", report.Imported, len(report.Skipped))
		for _, skip := range report.Skipped {
			fmt.Printf("  line %d: %s\n", skip.Line, skip.Reason)
		}

	case "scenario":
		companyID := companyArg(2)
		if len(os.Args) < 4 {
			log.Fatal("Usage: app scenario <company-id> \"<what-if description>\"")
		}
		snapshot, err := snapshots.Load(ctx, companyID)
		if err != nil {
			log.Fatalf("Failed to load company records: %v", err)
		}
		response, err := agent.InterpretScenario(ctx, os.Args[3],
			joinNames(shareholderNames(snapshot.Shareholders)), joinNames(classNames(snapshot.ShareClasses)))
		if err != nil {
			log.Fatalf("Agent error: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(response)

	case "repl":
		companyID := companyArg(2)
		runREPL(ctx, agent, snapshots, companyID)

	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  app summary  <company-id>                     print the cap table
  app export   <company-id> [classes]           write holdings or class CSV to stdout
  app import   <company-id> <file.csv>          import issuances from CSV
  app scenario <company-id> "<description>"     one-shot AI what-if proposal
  app repl     <company-id>                     interactive what-if modelling`)
	os.Exit(2)
}

func companyArg(pos int) int {
	if len(os.Args) <= pos {
		usage()
	}
	id, err := strconv.Atoi(os.Args[pos])
	if err != nil || id <= 0 {
		log.Fatalf("Invalid company id %q", os.Args[pos])
	}
	return id
}

func runREPL(ctx context.Context, agent *ai.Agent, snapshots core.SnapshotService, companyID int) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Cap Table What-If REPL")
	fmt.Println("Describe a hypothetical issuance, or type 'summary' / 'exit'.")
	fmt.Println("----------------------")

	for {
		fmt.Print("\n> ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit":
			return
		case "summary":
			snapshot, err := snapshots.Load(ctx, companyID)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			printCapTable(snapshot.CapTable())
			continue
		case "help":
			fmt.Println("Available commands: summary, help, exit, quit — anything else is sent to the AI.")
			continue
		}

		fmt.Println("Thinking...")
		accumulatedInput := input

		for {
			snapshot, err := snapshots.Load(ctx, companyID)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				break
			}

			response, err := agent.InterpretScenario(ctx, accumulatedInput,
				joinNames(shareholderNames(snapshot.Shareholders)), joinNames(classNames(snapshot.ShareClasses)))
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				break
			}

			if response.IsClarificationRequest {
				fmt.Printf("\n[Clarification Needed]: %s\n", response.Clarification.Message)
				fmt.Print("Your response: ")
				followUp, _ := reader.ReadString('\n')
				followUp = strings.TrimSpace(followUp)
				if followUp == "" || strings.ToLower(followUp) == "cancel" {
					fmt.Println("Scenario cancelled.")
					break
				}
				accumulatedInput = fmt.Sprintf("Original question: %s\nClarification requested: %s\nUser answered: %s",
					accumulatedInput, response.Clarification.Message, followUp)
				fmt.Println("Thinking again...")
				continue
			}

			proposal := response.Proposal
			printProposal(proposal)
			if proposal.Confidence < 0.6 {
				fmt.Println("\nWARNING: Low confidence proposal.")
			}

			result, err := runProposal(snapshot, companyID, proposal)
			if err != nil {
				fmt.Printf("Scenario failed: %v\n", err)
				break
			}
			printScenario(result)
			break
		}
	}
}

// runProposal resolves the proposal's names against the company records and
// models the future issuance. An unknown shareholder name is treated as a new
// investor.
func runProposal(snapshot *core.Snapshot, companyID int, p *core.ScenarioProposal) (*core.ScenarioResult, error) {
	var shareClass *core.ShareClass
	for i := range snapshot.ShareClasses {
		if strings.EqualFold(snapshot.ShareClasses[i].Name, p.ShareClassName) {
			shareClass = &snapshot.ShareClasses[i]
			break
		}
	}
	if shareClass == nil {
		return nil, fmt.Errorf("unknown share class %q", p.ShareClassName)
	}

	shareholders := snapshot.Shareholders
	holderID := 0
	for _, sh := range shareholders {
		if strings.EqualFold(sh.Name, p.ShareholderName) {
			holderID = sh.ID
			break
		}
	}
	if holderID == 0 {
		maxID := 0
		for _, sh := range shareholders {
			if sh.ID > maxID {
				maxID = sh.ID
			}
		}
		holderID = maxID + 1
		shareholders = append(append([]core.Shareholder(nil), shareholders...), core.Shareholder{
			ID:        holderID,
			CompanyID: companyID,
			Name:      p.ShareholderName,
			Type:      core.Investor,
		})
	}

	future := p.Issuance(companyID, holderID, shareClass.ID)
	return core.RunScenario(snapshot.Issuances, shareholders, snapshot.ShareClasses, future), nil
}

func printCapTable(ct *core.CapTable) {
	fmt.Println("\n--- SHARE CLASSES ---")
	fmt.Printf("%-28s %15s %15s %9s\n", "CLASS", "SHARES", "VALUE", "PCT")
	fmt.Println(strings.Repeat("-", 72))
	for _, cs := range ct.ClassSummary {
		fmt.Printf("%-28s %15d %15s %8s%%\n", cs.Name, cs.TotalShares, cs.TotalValue.StringFixed(2), cs.Percentage.StringFixed(2))
	}

	fmt.Println("\n--- SHAREHOLDERS ---")
	fmt.Printf("%-28s %-12s %15s %15s\n", "NAME", "TYPE", "SHARES", "VALUE")
	fmt.Println(strings.Repeat("-", 72))
	for _, ss := range ct.ShareholderSummary {
		fmt.Printf("%-28s %-12s %15d %15s\n", ss.Name, ss.Type, ss.TotalShares, ss.TotalValue.StringFixed(2))
	}

	fmt.Println(strings.Repeat("-", 72))
	fmt.Printf("Total shares:     %d\n", ct.TotalShares)
	fmt.Printf("Invested capital: %s\n", ct.TotalValue.StringFixed(2))
	fmt.Printf("Latest price:     %s\n", ct.LatestValuationPerShare.StringFixed(4))
	fmt.Printf("Valuation:        %s\n", ct.CompanyValuation.StringFixed(2))
}

func printProposal(p *core.ScenarioProposal) {
	fmt.Printf("\nSHAREHOLDER: %s\n", p.ShareholderName)
	fmt.Printf("CLASS:       %s\n", p.ShareClassName)
	fmt.Printf("SHARES:      %d @ %s\n", p.Shares, p.PricePerShare)
	fmt.Printf("DATE:        %s\n", p.IssueDate)
	if p.Round != "" {
		fmt.Printf("ROUND:       %s\n", p.Round)
	}
	fmt.Printf("REASONING:   %s\n", p.Reasoning)
	fmt.Printf("CONFIDENCE:  %.2f\n", p.Confidence)
}

func printScenario(result *core.ScenarioResult) {
	fmt.Println("\n--- OWNERSHIP AFTER SCENARIO ---")
	fmt.Printf("%-28s %12s %12s %10s\n", "NAME", "NOW", "FUTURE", "CHANGE")
	fmt.Println(strings.Repeat("-", 68))
	for _, sh := range result.Shareholders {
		fmt.Printf("%-28s %11s%% %11s%% %9s%%\n",
			sh.Name, sh.CurrentPercentage.StringFixed(2), sh.FuturePercentage.StringFixed(2), sh.PercentageChange.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 68))
	fmt.Printf("Total shares: %d -> %d\n", result.Current.TotalShares, result.Future.TotalShares)
	fmt.Printf("Valuation:    %s -> %s\n",
		result.Current.CompanyValuation.StringFixed(2), result.Future.CompanyValuation.StringFixed(2))
}

func shareholderNames(shareholders []core.Shareholder) []string {
	names := make([]string, len(shareholders))
	for i, sh := range shareholders {
		names[i] = sh.Name
	}
	return names
}

func classNames(classes []core.ShareClass) []string {
	names := make([]string, len(classes))
	for i, sc := range classes {
		names[i] = sc.Name
	}
	return names
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
