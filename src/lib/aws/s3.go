package aws

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func GetS3Client() *s3.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil
	}
	svc := s3.NewFromConfig(cfg)
	return svc
}

// S3UploadMedia stores an uploaded image under the media bucket and returns
// its public URL.
func S3UploadMedia(key string, body io.Reader, contentType string) (*string, error) {
	mediaBucket := os.Getenv("S3_MEDIA_BUCKET")
	client := GetS3Client()
	_, err := client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(mediaBucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("Could not put object to S3 bucket: %s\n", err.Error())
		return nil, err
	}
	log.Printf("Added object '%s' to bucket '%s'", key, mediaBucket)
	region := os.Getenv("AWS_REGION")
	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", mediaBucket, region, key)
	return &url, nil
}
