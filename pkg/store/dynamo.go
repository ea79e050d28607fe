// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

// DynamoAPI is the subset of the DynamoDB client used by Dynamo.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

const dynamoKey = "PlayerId"

// Dynamo stores one item per player keyed by PlayerId.
type Dynamo struct {
	api   DynamoAPI
	table string
}

// NewDynamoFromEnvironment builds a client from the default AWS credential chain.
func NewDynamoFromEnvironment(ctx context.Context, table string) (*Dynamo, error) {
	if table == "" {
		return nil, errors.New("dynamodb rating store requires DYNAMODB_TABLE")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewDynamo(dynamodb.NewFromConfig(cfg), table), nil
}

func NewDynamo(api DynamoAPI, table string) *Dynamo {
	return &Dynamo{api: api, table: table}
}

func (d *Dynamo) Get(ctx context.Context, playerID string) (int, bool, error) {
	out, err := d.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key: map[string]types.AttributeValue{
			dynamoKey: &types.AttributeValueMemberS{Value: playerID},
		},
	})
	if err != nil {
		return 0, false, err
	}
	if len(out.Item) == 0 {
		return 0, false, nil
	}
	var record models.PlayerRating
	if err = attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return 0, false, err
	}
	return record.Rating, true, nil
}

func (d *Dynamo) Set(ctx context.Context, playerID string, rating int) error {
	item, err := attributevalue.MarshalMap(models.PlayerRating{PlayerID: playerID, Rating: rating})
	if err != nil {
		return err
	}
	_, err = d.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	})
	return err
}

// Top scans the whole table. Rating tables are small enough for this.
func (d *Dynamo) Top(ctx context.Context, n int) ([]models.PlayerRating, error) {
	var (
		records  []models.PlayerRating
		startKey map[string]types.AttributeValue
	)
	for {
		out, err := d.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(d.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []models.PlayerRating
		if err = attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		records = append(records, page...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	if records == nil {
		records = []models.PlayerRating{}
	}
	return sortTop(records, n), nil
}

func (d *Dynamo) Close() error {
	return nil
}
