package mongostore

import (
	"time"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toNative converts values produced by the adapters into driver types.
func toNative(v any) any {
	switch t := v.(type) {
	case domain.Document:
		doc := make(bson.M, len(t))
		for k, item := range t {
			doc[k] = toNative(item)
		}
		return doc
	case []any:
		lst := make(bson.A, len(t))
		for n, item := range t {
			lst[n] = toNative(item)
		}
		return lst
	case domain.Regex:
		return primitive.Regex{Pattern: t.Pattern, Options: t.Options}
	default:
		return v
	}
}

func nativeDoc(d domain.Document) bson.M {
	if d == nil {
		return bson.M{}
	}
	return toNative(d).(bson.M)
}

// fromNative converts decoded driver values into plain Go values.
func fromNative(v any) any {
	switch t := v.(type) {
	case bson.M:
		return fromNativeDoc(t)
	case bson.D:
		doc := make(domain.Document, len(t))
		for _, e := range t {
			doc[e.Key] = fromNative(e.Value)
		}
		return doc
	case bson.A:
		lst := make([]any, len(t))
		for n, item := range t {
			lst[n] = fromNative(item)
		}
		return lst
	case int32:
		return int64(t)
	case primitive.DateTime:
		return t.Time()
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0)
	case primitive.ObjectID:
		return t.Hex()
	case primitive.Binary:
		return t.Data
	case primitive.Regex:
		return domain.Regex{Pattern: t.Pattern, Options: t.Options}
	case primitive.Null, primitive.Undefined:
		return nil
	default:
		return v
	}
}

func fromNativeDoc(m bson.M) domain.Document {
	doc := make(domain.Document, len(m))
	for k, item := range m {
		doc[k] = fromNative(item)
	}
	return doc
}

func sortDoc(s domain.Sort) bson.D {
	res := make(bson.D, len(s))
	for n, name := range s {
		res[n] = bson.E{Key: name.Key, Value: name.Order}
	}
	return res
}

// projection includes "id" and excludes the native identity.
func projection(fields []string) bson.D {
	res := bson.D{{Key: domain.FieldID, Value: 1}}
	for _, f := range fields {
		if f != domain.FieldID && f != "_id" {
			res = append(res, bson.E{Key: f, Value: 1})
		}
	}
	return append(res, bson.E{Key: "_id", Value: 0})
}
