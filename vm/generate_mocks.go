//go:generate mockgen -destination=mock_memory_test.go -package=vm github.com/CircuitSutra/VeeR-ISS/vm Memory

package vm
