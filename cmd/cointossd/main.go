// main.go - Coin toss sandbox daemon.
//
// Boots a self-contained deployment (note log, token, oracle, coin toss
// contract), funds the demo parties, runs one complete bet through
// placement, resolution, and settlement, then serves the read-only HTTP
// API over the resulting state.
package main

import (
	"flag"
	"math/big"
	"os"
	"path/filepath"

	"github.com/defi-wonderland/aztec-coin-toss/internal/authwit"
	"github.com/defi-wonderland/aztec-coin-toss/internal/cointoss"
	"github.com/defi-wonderland/aztec-coin-toss/internal/oracle"
	"github.com/defi-wonderland/aztec-coin-toss/internal/token"
	"github.com/defi-wonderland/aztec-coin-toss/internal/zknotes"
)

func main() {
	configPath := flag.String("config", "cointoss_config.json", "path to the configuration file")
	prove := flag.Bool("prove", false, "produce and verify a bet receipt proof during the demo")
	flag.Parse()

	config, err := LoadConfig(*configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		os.Stderr.WriteString("invalid config: " + err.Error() + "\n")
		os.Exit(1)
	}

	auditPath := ""
	if config.EnableAudit {
		auditPath = config.AuditLogPath
	}
	logger, err := NewLogger(config.LogLevel, config.LogFile, auditPath)
	if err != nil {
		os.Stderr.WriteString("failed to create logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Close()

	metrics := NewMetricsCollector()
	logger.Info("Starting coin toss sandbox")

	// Sandbox parties. The divinity answers oracle questions; the house
	// backs every bet; alice is the demo bettor.
	noteLog := zknotes.NewNoteLog()
	divinity := mustAccount(logger, "divinity")
	house := mustAccount(logger, "house")
	alice := mustAccount(logger, "alice")
	for _, acct := range []*zknotes.Account{divinity, house, alice} {
		noteLog.RegisterAccount(acct)
		logger.Info("Account %s: %s", acct.Name, acct.Address)
	}

	tok := token.NewContract(noteLog)
	orc := oracle.NewContract()
	toss := cointoss.NewContract(noteLog, tok, orc)

	betAmount := big.NewInt(config.BetAmount)
	if err := toss.Constructor(divinity.Address, orc.Address(), house.Address, tok.Address(), betAmount); err != nil {
		logger.Fatal("constructor failed: %v", err)
	}
	tok.Mint(house.Address, big.NewInt(config.HouseFloat))
	tok.Mint(alice.Address, big.NewInt(config.UserFunding))
	logger.Info("Contracts deployed: token=%s oracle=%s cointoss=%s", tok.Address(), orc.Address(), toss.Address())

	if err := runDemoToss(config, logger, metrics, noteLog, tok, orc, toss, divinity, house, alice, *prove); err != nil {
		logger.Fatal("demo toss failed: %v", err)
	}

	if err := noteLog.SaveToFile(config.NoteLogPath); err != nil {
		logger.Error("failed to persist note log: %v", err)
	} else {
		logger.Info("Note log persisted to %s", config.NoteLogPath)
	}

	accounts := map[string]zknotes.Address{
		"divinity": divinity.Address,
		"house":    house.Address,
		"alice":    alice.Address,
	}
	server := NewServer(config, logger, metrics, toss, tok, accounts)
	if err := server.Start(); err != nil {
		logger.Fatal("HTTP server failed: %v", err)
	}
}

func mustAccount(logger *Logger, name string) *zknotes.Account {
	acct, err := zknotes.NewAccount(name)
	if err != nil {
		logger.Fatal("failed to create account %s: %v", name, err)
	}
	return acct
}

// runDemoToss plays one bet end to end: the house pre-shares an escrow and
// its settlement witness, alice approves her stake and places the bet, the
// divinity answers through the oracle, and settlement pays the winner.
func runDemoToss(config *Config, logger *Logger, metrics *MetricsCollector, noteLog *zknotes.NoteLog, tok *token.Contract, orc *oracle.Contract, toss *cointoss.Contract, divinity, house, alice *zknotes.Account, prove bool) error {
	betAmount := big.NewInt(config.BetAmount)
	betID := zknotes.RandomField()

	// House side: park one stake in escrow and authorize the contract to
	// redeem it during bet creation.
	houseEscrow, err := tok.EscrowFunds(house.Address, house.Address, betAmount, new(big.Int), house.Address)
	if err != nil {
		return err
	}
	settleNonce := zknotes.RandomField()
	tok.AddAuthWitness(authwit.Compute(house.Address, toss.Address(), "settle_escrow",
		houseEscrow, toss.Address().Big(), settleNonce))

	// Bettor side: authorize the contract to pull the stake.
	transferNonce := zknotes.RandomField()
	tok.AddAuthWitness(authwit.Compute(alice.Address, toss.Address(), "transfer",
		alice.Address.Big(), toss.Address().Big(), betAmount, transferNonce))

	guess := true
	if err := toss.CreateBet(alice.Address, guess, transferNonce, houseEscrow, settleNonce, betID); err != nil {
		return err
	}
	metrics.IncrementCounter(MetricBetsCreated)
	metrics.SetGauge(MetricOpenBets, 1)
	logger.Info("Bet placed: owner=%s guess=%v", alice.Address, guess)
	logger.Audit("bet_created", map[string]interface{}{
		"owner": alice.Address.String(),
		"id":    betID.String(),
	})

	if prove {
		if err := proveDemoReceipt(config, logger, alice, betID, guess, noteLog); err != nil {
			return err
		}
	}

	// The divinity tosses the coin.
	if err := orc.SubmitAnswer(divinity.Address, betID, big.NewInt(1)); err != nil {
		return err
	}
	metrics.IncrementCounter(MetricCallbacksReceived)
	logger.Info("Oracle answered: heads")

	if err := toss.SettleBet(betID); err != nil {
		return err
	}
	metrics.IncrementCounter(MetricBetsSettled)
	metrics.SetGauge(MetricOpenBets, 0)
	logger.Info("Bet settled: alice=%s house=%s",
		tok.BalanceOf(alice.Address), tok.BalanceOf(house.Address))
	logger.Audit("bet_settled", map[string]interface{}{"id": betID.String()})
	return nil
}

// proveDemoReceipt recovers alice's bet note by scanning the log and proves
// knowledge of its opening without revealing the guess.
func proveDemoReceipt(config *Config, logger *Logger, alice *zknotes.Account, betID *big.Int, guess bool, noteLog *zknotes.NoteLog) error {
	var note *cointoss.BetNote
	for _, dn := range noteLog.ScanFor(alice) {
		if len(dn.Fields) != cointoss.BetNoteLen {
			continue
		}
		var fields [cointoss.BetNoteLen]*big.Int
		copy(fields[:], dn.Fields)
		bn, err := cointoss.DeserializeBet(fields)
		if err != nil {
			continue
		}
		if bn.BetID.Cmp(betID) == 0 {
			note = bn
			break
		}
	}
	if note == nil {
		return cointoss.ErrBetNotFound
	}

	logger.Info("Compiling bet receipt circuit")
	ccs, err := cointoss.CompileBetReceiptCircuit()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(config.KeyDir, 0755); err != nil {
		return err
	}
	pk, vk, err := cointoss.SetupOrLoadKeys(ccs,
		filepath.Join(config.KeyDir, "receipt_proving.key"),
		filepath.Join(config.KeyDir, "receipt_verifying.key"))
	if err != nil {
		return err
	}
	proof, err := cointoss.ProveBetReceipt(note, ccs, pk)
	if err != nil {
		return err
	}
	if err := cointoss.VerifyBetReceipt(proof, note.Commitment(), cointoss.RegistryTag(betID), vk); err != nil {
		return err
	}
	logger.Info("Bet receipt proof verified (%d bytes)", len(proof))
	return nil
}
