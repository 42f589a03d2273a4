package main

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/asaidimu/go-fieldguard/core/guard"
	"github.com/asaidimu/go-fieldguard/core/metadata"
	"github.com/asaidimu/go-fieldguard/core/record"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	metadataFileName = "metadata.json"
	issuesFileName   = "issues.csv"
)

var errDivisionByZero = errors.New("division by zero")

func power(args ...any) (float64, error) {
	return math.Pow(float64(args[0].(int)), float64(args[1].(int))), nil
}

func subtract(args ...any) (int, error) {
	return args[0].(int) - args[1].(int), nil
}

func divide(args ...any) (float64, error) {
	x, y := args[0].(int), args[1].(int)
	if y == 0 {
		return 0, errDivisionByZero
	}
	return float64(x) / float64(y), nil
}

func main() {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	logger, err := config.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	runGuards(logger)
	runRecords(logger)
}

func runGuards(logger *zap.Logger) {
	opts := guard.DefaultOptions()
	opts.Logger = logger

	handle1 := guard.Wrap(power)
	handle2 := guard.Apply(guard.New(opts), subtract)
	handle3 := guard.Wrap(divide)

	fmt.Println(handle1.Call(1, "hkghkj"))
	fmt.Println(handle2.Call(1, "gfhjg"))
	fmt.Println(handle3.Call(1, 0))

	// Narrow filters only intercept the errors they name.
	handle4 := guard.Apply(guard.Catching(guard.Is(errDivisionByZero)), divide)
	fmt.Println(handle4.Call(3, 0))
	fmt.Println(handle4.Call(3, 2))

	func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Printf("%s propagated: %v\n", handle4.Name(), r)
			}
		}()
		fmt.Println(handle4.Call(3, "ghjghj"))
	}()
}

func runRecords(logger *zap.Logger) {
	table, err := metadata.LoadFile(metadataFileName)
	if err != nil {
		logger.Fatal("Failed to load metadata", zap.Error(err))
	}

	issues, err := record.LoadFile(issuesFileName, table, &record.Options{Logger: logger})
	if err != nil {
		logger.Fatal("Failed to load issues", zap.Error(err))
	}
	if len(issues) == 0 {
		logger.Fatal("No issues found", zap.String("file", issuesFileName))
	}

	first := issues[0]
	id, err := first.ID()
	printField(id, err)
	username, err := first.Username()
	printField(username, err)
	createdAt, err := first.CreatedAt()
	printField(createdAt, err)
	profileURL, err := first.ProfileURL()
	printField(profileURL, err)
}

func printField[T any](v T, err error) {
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%T %v\n", v, v)
}
