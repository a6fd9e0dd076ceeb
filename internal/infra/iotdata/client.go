// Package iotdata publishes shadow documents through the AWS IoT data-plane
// HTTPS API.
package iotdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
)

type publishAPI interface {
	Publish(ctx context.Context, params *iotdataplane.PublishInput, optFns ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error)
}

type Client struct {
	api publishAPI
}

// NewClient resolves credentials from the default AWS chain and targets
// the account's data endpoint, e.g. data.iot.ap-southeast-2.amazonaws.com.
// When region is empty it is taken from the endpoint host.
func NewClient(ctx context.Context, endpoint, region string) (*Client, error) {
	if region == "" {
		region = RegionFromEndpoint(endpoint)
	}
	if region == "" {
		return nil, fmt.Errorf("cannot determine region for endpoint %q", endpoint)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return newClient(cfg, baseURL(endpoint)), nil
}

// NewClientWithURL builds a client against an explicit base URL with fixed
// credentials.
func NewClientWithURL(url, region string, creds aws.CredentialsProvider) *Client {
	return newClient(aws.Config{Region: region, Credentials: creds}, url)
}

func newClient(cfg aws.Config, url string) *Client {
	api := iotdataplane.NewFromConfig(cfg, func(o *iotdataplane.Options) {
		o.BaseEndpoint = aws.String(url)
	})
	return &Client{api: api}
}

func (c *Client) Name() string {
	return "iotdata"
}

func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	_, err := c.api.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("iot data publish to %s: %w", topic, err)
	}
	return nil
}

// RegionFromEndpoint extracts the region from an IoT endpoint host such as
// "abc-ats.iot.ap-southeast-2.amazonaws.com".
func RegionFromEndpoint(endpoint string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	parts := strings.Split(host, ".")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "iot" {
			return parts[i+1]
		}
	}
	return ""
}

func baseURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "https://") || strings.HasPrefix(endpoint, "http://") {
		return endpoint
	}
	return "https://" + endpoint
}
