package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/geocoder89/careercounsel/internal/domain/user"
	"github.com/geocoder89/careercounsel/internal/store"
)

// API is the part of *dynamodb.Client the users table needs.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type userItem struct {
	Username    string  `dynamodbav:"username"`
	Password    string  `dynamodbav:"password"`
	Role        string  `dynamodbav:"role"`
	IsAdmin     bool    `dynamodbav:"is_admin"`
	College     string  `dynamodbav:"college,omitempty"`
	Education   string  `dynamodbav:"education,omitempty"`
	CGPA        string  `dynamodbav:"cgpa,omitempty"`
	Skills      string  `dynamodbav:"skills,omitempty"`
	TargetGoal  string  `dynamodbav:"target_goal,omitempty"`
	RoadmapText *string `dynamodbav:"roadmap_text,omitempty"`
}

func toItem(u user.User) userItem {
	return userItem{
		Username:    u.Username,
		Password:    u.Password,
		Role:        string(u.Role),
		IsAdmin:     u.IsAdmin,
		College:     u.College,
		Education:   u.Education,
		CGPA:        u.CGPA,
		Skills:      u.Skills,
		TargetGoal:  u.TargetGoal,
		RoadmapText: u.RoadmapText,
	}
}

func (it userItem) toUser() user.User {
	return user.User{
		Account: user.Account{
			Username: it.Username,
			Password: it.Password,
			Role:     user.Role(it.Role),
			IsAdmin:  it.IsAdmin,
		},
		College:     it.College,
		Education:   it.Education,
		CGPA:        it.CGPA,
		Skills:      it.Skills,
		TargetGoal:  it.TargetGoal,
		RoadmapText: it.RoadmapText,
	}
}

// UsersRepo stores users in a DynamoDB table whose partition key is "username".
type UsersRepo struct {
	api   API
	table string
}

func NewUsersRepo(api API, table string) *UsersRepo {
	return &UsersRepo{api: api, table: table}
}

func usernameKey(username string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"username": &types.AttributeValueMemberS{Value: username},
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func (r *UsersRepo) PutIfAbsent(ctx context.Context, u user.User) error {
	item, err := attributevalue.MarshalMap(toItem(u))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(username)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("dynamodb put user: %w", err)
	}
	return nil
}

func (r *UsersRepo) Get(ctx context.Context, username string) (user.User, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       usernameKey(username),
	})
	if err != nil {
		return user.User{}, fmt.Errorf("dynamodb get user: %w", err)
	}
	if len(out.Item) == 0 {
		return user.User{}, store.ErrNotFound
	}

	var it userItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return user.User{}, fmt.Errorf("unmarshal user: %w", err)
	}
	return it.toUser(), nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, username string, f user.ProfileFields) error {
	return r.update(ctx, username,
		"SET college = :c, education = :e, cgpa = :cg, skills = :s, target_goal = :t",
		map[string]types.AttributeValue{
			":c":  &types.AttributeValueMemberS{Value: f.College},
			":e":  &types.AttributeValueMemberS{Value: f.Education},
			":cg": &types.AttributeValueMemberS{Value: f.CGPA},
			":s":  &types.AttributeValueMemberS{Value: f.Skills},
			":t":  &types.AttributeValueMemberS{Value: f.TargetGoal},
		},
	)
}

func (r *UsersRepo) SetRoadmap(ctx context.Context, username, text string) error {
	return r.update(ctx, username,
		"SET roadmap_text = :r",
		map[string]types.AttributeValue{
			":r": &types.AttributeValueMemberS{Value: text},
		},
	)
}

func (r *UsersRepo) update(ctx context.Context, username, expr string, values map[string]types.AttributeValue) error {
	_, err := r.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       usernameKey(username),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(username)"),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionFailed(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("dynamodb update user: %w", err)
	}
	return nil
}

// Scan pages through the whole table and sorts by username.
func (r *UsersRepo) Scan(ctx context.Context) ([]user.User, error) {
	p := dynamodb.NewScanPaginator(r.api, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	})

	out := make([]user.User, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb scan users: %w", err)
		}

		var items []userItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal users: %w", err)
		}
		for _, it := range items {
			out = append(out, it.toUser())
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	_, err := r.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	return err
}
