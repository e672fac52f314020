package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mbolis/agriquest/formschema"
	"github.com/mbolis/agriquest/model"
)

func (c *Client) PublishQuestionnaire(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPost, c.Questionnaires.item(id)+"/publish", nil, struct{}{}, nil)
}

// Schema returns the stored form schema of a questionnaire, as raw JSON. A
// questionnaire that never had a schema answers with an empty document.
func (c *Client) Schema(ctx context.Context, id int) (json.RawMessage, error) {
	data, err := c.raw(ctx, http.MethodGet, c.Questionnaires.item(id)+"/schema", nil, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (c *Client) SaveSchema(ctx context.Context, id int, schema formschema.FormSchema) error {
	return c.do(ctx, http.MethodPut, c.Questionnaires.item(id)+"/schema", nil, schema, nil)
}

func (c *Client) GenerateParticipants(ctx context.Context, sampleID int, req model.GenerateParticipantsRequest) ([]model.Participant, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, c.Samples.item(sampleID)+"/participants", nil, req, &raw); err != nil {
		return nil, err
	}
	page, err := DecodePage[model.Participant](raw)
	return page.Items, err
}

func (c *Client) SampleParticipants(ctx context.Context, sampleID int) (model.Page[model.Participant], error) {
	return list[model.Participant](ctx, c, c.Samples.item(sampleID)+"/participants", nil)
}

func (c *Client) GroupsBySample(ctx context.Context, sampleID int) ([]model.SampleGroup, error) {
	page, err := list[model.SampleGroup](ctx, c, c.SampleGroups.path+"/by-sample/"+strconv.Itoa(sampleID), nil)
	return page.Items, err
}

func (c *Client) AssignFarms(ctx context.Context, groupID int, farmIDs []int) error {
	req := model.AssignFarmsRequest{FarmIDs: farmIDs}
	return c.do(ctx, http.MethodPost, c.SampleGroups.item(groupID)+"/assign-farms", nil, req, nil)
}

func (c *Client) SetInterviewer(ctx context.Context, groupID, interviewerID int) error {
	req := model.InterviewerRequest{InterviewerID: interviewerID}
	return c.do(ctx, http.MethodPut, c.SampleGroups.item(groupID)+"/interviewer", nil, req, nil)
}

func (c *Client) QuotaSummary(ctx context.Context) (model.QuotaSummary, error) {
	var summary model.QuotaSummary
	err := c.do(ctx, http.MethodGet, c.Quotas.path+"/summary", nil, nil, &summary)
	if summary.Quotas == nil {
		summary.Quotas = []model.Quota{}
	}
	return summary, err
}

func (c *Client) Allocate(ctx context.Context, quotaID, participantID int) error {
	req := model.AllocationRequest{QuotaID: quotaID, ParticipantID: participantID}
	return c.do(ctx, http.MethodPost, c.Quotas.path+"/allocate", nil, req, nil)
}

func (c *Client) Deallocate(ctx context.Context, quotaID, participantID int) error {
	req := model.AllocationRequest{QuotaID: quotaID, ParticipantID: participantID}
	return c.do(ctx, http.MethodPost, c.Quotas.path+"/deallocate", nil, req, nil)
}

// AutoAllocate asks the backend to fill quotas on its own. The result is
// relayed as reported.
func (c *Client) AutoAllocate(ctx context.Context, req model.AutoAllocationRequest) (model.AutoAllocationResult, error) {
	var result model.AutoAllocationResult
	err := c.do(ctx, http.MethodPost, c.Quotas.path+"/auto-allocate", nil, req, &result)
	return result, err
}

func (c *Client) EligibleParticipants(ctx context.Context, quotaID int) ([]model.Participant, error) {
	page, err := list[model.Participant](ctx, c, c.Quotas.item(quotaID)+"/eligible", nil)
	return page.Items, err
}

func (c *Client) QuotaParticipants(ctx context.Context, quotaID int) ([]model.Participant, error) {
	page, err := list[model.Participant](ctx, c, c.Quotas.item(quotaID)+"/participants", nil)
	return page.Items, err
}
