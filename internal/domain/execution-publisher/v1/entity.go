package executionpublisherv1

import (
	"encoding/json"
	"time"

	orderbookv1 "github.com/quantonr/exchange/internal/domain/orderbook/v1"
)

// ExecutionReport is the wire form of one fill. Prices are decimal strings
// in quote units with two fractional digits.
type ExecutionReport struct {
	ExecutionID uint64 `json:"executionID"`
	Symbol      string `json:"symbol"`

	MakerOrderID  uint64 `json:"makerOrderID"`
	TakerOrderID  uint64 `json:"takerOrderID"`
	MakerClientID uint32 `json:"makerClientID"`
	TakerClientID uint32 `json:"takerClientID"`

	MakerSide string `json:"makerSide"`
	TakerSide string `json:"takerSide"`

	Price string `json:"price"`
	Size  int64  `json:"size"`

	MakerExecType string `json:"makerExecType"`
	TakerExecType string `json:"takerExecType"`

	MakerFilled   int64  `json:"makerFilled"`
	TakerFilled   int64  `json:"takerFilled"`
	MakerLeaves   int64  `json:"makerLeaves"`
	TakerLeaves   int64  `json:"takerLeaves"`
	MakerAvgPrice string `json:"makerAvgPrice"`
	TakerAvgPrice string `json:"takerAvgPrice"`

	Timestamp time.Time `json:"timestamp"`
}

// FromExecution converts an engine execution into its wire form.
func FromExecution(execution *orderbookv1.Execution) *ExecutionReport {
	return &ExecutionReport{
		ExecutionID:   execution.ID,
		Symbol:        execution.Symbol,
		MakerOrderID:  execution.MakerOrderID,
		TakerOrderID:  execution.TakerOrderID,
		MakerClientID: execution.MakerClientID,
		TakerClientID: execution.TakerClientID,
		MakerSide:     string(execution.MakerSide),
		TakerSide:     string(execution.TakerSide),
		Price:         orderbookv1.PriceToDecimal(execution.Price),
		Size:          execution.Size,
		MakerExecType: string(execution.MakerExecType),
		TakerExecType: string(execution.TakerExecType),
		MakerFilled:   execution.MakerFilled,
		TakerFilled:   execution.TakerFilled,
		MakerLeaves:   execution.MakerLeaves,
		TakerLeaves:   execution.TakerLeaves,
		MakerAvgPrice: orderbookv1.AvgPriceToDecimal(execution.MakerAvgPrice),
		TakerAvgPrice: orderbookv1.AvgPriceToDecimal(execution.TakerAvgPrice),
		Timestamp:     execution.Timestamp,
	}
}

// ToBytes converts the report to a byte array.
func ToBytes(report *ExecutionReport) []byte {
	data, err := json.Marshal(report)
	if err != nil {
		return nil
	}
	return data
}

// FromBytes converts a byte array to a report.
func FromBytes(data []byte) *ExecutionReport {
	var report ExecutionReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil
	}
	return &report
}
