package domain

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID validates an externally supplied identifier string and converts it
// to the store-native ObjectID. It must run before the string is used as a
// store key or embedded in a reference set.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}
