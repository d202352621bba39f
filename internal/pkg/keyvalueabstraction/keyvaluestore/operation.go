package keyvaluestore

import (
	"context"
	"fmt"
)

type OperationType uint8

const (
	OperationTypePut OperationType = iota + 1
	OperationTypeDelete
)

func (t OperationType) String() string {
	switch t {
	case OperationTypePut:
		return "put"
	case OperationTypeDelete:
		return "delete"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Operation is a single write of a batch. Value is nil for deletes.
type Operation struct {
	Type  OperationType
	Key   string
	Value []byte
}

func PutOperation(key string, value []byte) Operation {
	return Operation{Type: OperationTypePut, Key: key, Value: value}
}

func DeleteOperation(key string) Operation {
	return Operation{Type: OperationTypeDelete, Key: key}
}

// Apply writes the operations one by one in order.
func Apply(ctx context.Context, w Writer, ops []Operation) error {
	for _, op := range ops {
		var err error

		switch op.Type {
		case OperationTypePut:
			err = w.Put(ctx, op.Key, op.Value)
		case OperationTypeDelete:
			err = w.Delete(ctx, op.Key)
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
		}

		if err != nil {
			return fmt.Errorf("failed to apply %s %q: %w", op.Type, op.Key, err)
		}
	}

	return nil
}
