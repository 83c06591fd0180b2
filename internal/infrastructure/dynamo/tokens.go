package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/atelier-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// tokenItem is the stored shape of a one-time token. Times are Unix seconds;
// expires_at doubles as the table's TTL attribute.
type tokenItem struct {
	Token     string `dynamodbav:"token"`
	UserID    string `dynamodbav:"user_id"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
	UsedAt    *int64 `dynamodbav:"used_at,omitempty"`
	CreatedAt int64  `dynamodbav:"created_at"`
}

func toItem(t *domain.Token) tokenItem {
	it := tokenItem{
		Token:     t.Token,
		UserID:    t.UserID,
		ExpiresAt: t.ExpiresAt.Unix(),
		CreatedAt: t.CreatedAt.Unix(),
	}
	if t.UsedAt != nil {
		u := t.UsedAt.Unix()
		it.UsedAt = &u
	}
	return it
}

func (it tokenItem) toDomain(p domain.TokenPurpose) *domain.Token {
	t := &domain.Token{
		Token:     it.Token,
		UserID:    it.UserID,
		Purpose:   p,
		ExpiresAt: time.Unix(it.ExpiresAt, 0).UTC(),
		CreatedAt: time.Unix(it.CreatedAt, 0).UTC(),
	}
	if it.UsedAt != nil {
		u := time.Unix(*it.UsedAt, 0).UTC()
		t.UsedAt = &u
	}
	return t
}

// TokenRepo manages verification and password-reset tokens.
// PK: token. One table per purpose.
type TokenRepo struct {
	client API
	tables map[domain.TokenPurpose]string
	users  *UserRepo
}

func NewTokenRepo(client API, verificationTable, resetTable string, users *UserRepo) *TokenRepo {
	return &TokenRepo{
		client: client,
		tables: map[domain.TokenPurpose]string{
			domain.PurposeEmailVerification: verificationTable,
			domain.PurposePasswordReset:     resetTable,
		},
		users: users,
	}
}

func (r *TokenRepo) table(p domain.TokenPurpose) (string, error) {
	name, ok := r.tables[p]
	if !ok {
		return "", fmt.Errorf("unknown token purpose %q", p)
	}
	return name, nil
}

func (r *TokenRepo) Put(ctx context.Context, t *domain.Token) error {
	table, err := r.table(t.Purpose)
	if err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(toItem(t))
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#t)"),
		ExpressionAttributeNames: map[string]string{"#t": "token"},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("token already exists: %w", domain.ErrConflict)
	}
	return err
}

func (r *TokenRepo) Get(ctx context.Context, purpose domain.TokenPurpose, token string) (*domain.Token, error) {
	table, err := r.table(purpose)
	if err != nil {
		return nil, err
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            strKey("token", token),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("token not found: %w", domain.ErrNotFound)
	}
	var it tokenItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return it.toDomain(purpose), nil
}

// Consume marks t used and applies userUpdates in a single transaction. The
// token write is conditional on the token still being unused and unexpired;
// the old item returned on failure tells the two apart.
func (r *TokenRepo) Consume(ctx context.Context, t *domain.Token, now time.Time, userUpdates map[string]interface{}) error {
	table, err := r.table(t.Purpose)
	if err != nil {
		return err
	}
	userUpdate, err := r.users.updateInput(t.UserID, userUpdates)
	if err != nil {
		return err
	}
	nowUnix := strconv.FormatInt(now.Unix(), 10)
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:                aws.String(table),
				Key:                      strKey("token", t.Token),
				UpdateExpression:         aws.String("SET used_at = :now"),
				ConditionExpression:      aws.String("attribute_exists(#t) AND attribute_not_exists(used_at) AND expires_at > :now"),
				ExpressionAttributeNames: map[string]string{"#t": "token"},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":now": &types.AttributeValueMemberN{Value: nowUnix},
				},
				ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
			}},
			{Update: userUpdate},
		},
	})
	if err == nil {
		return nil
	}
	reasons := cancelReasons(err)
	if len(reasons) == 2 {
		if reasons[0] == codeConditionFailed {
			return staleToken(cancelledItem(err, 0))
		}
		if reasons[1] == codeConditionFailed {
			return fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
	}
	return err
}

// staleToken explains a failed token condition from the item as it was. A
// missing item is reported as used.
func staleToken(old map[string]types.AttributeValue) error {
	if old == nil {
		return domain.ErrTokenUsed
	}
	if _, used := old["used_at"]; used {
		return domain.ErrTokenUsed
	}
	return domain.ErrTokenExpired
}
