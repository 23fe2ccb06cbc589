// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package domain

import (
	"encoding/json"
	"time"
)

// TaskType discriminates the closed set of task bodies a Task may carry,
// assembled in order by the usecase compiler: DeploySoftware, then zero or
// more DownloadFile, then ExecuteUsecase/ExecuteScript, then zero or more
// CollectOutput/UploadFile.
type TaskType string

const (
	TaskDeploySoftware TaskType = "DeploySoftware"
	TaskDownloadFile   TaskType = "DownloadFile"
	TaskExecuteUsecase TaskType = "ExecuteUsecase"
	TaskUploadFile     TaskType = "UploadFile"
	TaskCollectOutput  TaskType = "CollectOutput"
	TaskExecuteScript  TaskType = "ExecuteScript"
)

// DeploySoftwareBody installs a named facility onto the executing agent
// before any ExecuteUsecase task runs.
type DeploySoftwareBody struct {
	FacilityKind string `json:"facility_kind"`
}

// DownloadFileBody stages a file onto the agent's local working directory
// ahead of execution.
type DownloadFileBody struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// ExecuteUsecaseBody runs a registered usecase by name with the assembled
// argument/environment bindings.
type ExecuteUsecaseBody struct {
	Name         string            `json:"name"`
	FacilityKind string            `json:"facility_kind"`
	Arguments    []string          `json:"arguments"`
	Environments map[string]string `json:"environments,omitempty"`
	StdIn        string            `json:"std_in,omitempty"`
	Requirements map[string]string `json:"requirements,omitempty"`
}

// ExecuteScriptBody runs a raw script body directly, bypassing usecase
// registry lookup entirely.
type ExecuteScriptBody struct {
	Kind       string `json:"kind"`
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	Origin     string `json:"origin"`
}

// UploadFileBody collects a produced file back from the agent into the
// content-addressed store via the move pipeline.
type UploadFileBody struct {
	FileID    string `json:"file_id"`
	Path      string `json:"path"`
	IsPackage bool   `json:"is_package"`
	Validator string `json:"validator,omitempty"`
	Optional  bool   `json:"optional"`
}

// CollectOutputBody moves a produced path on the agent into an output
// slot's pre-allocated file id, applying an optional glob/regex rule when
// the producing path is a directory.
type CollectOutputBody struct {
	From     string `json:"from"`
	Rule     string `json:"rule,omitempty"`
	To       string `json:"to"`
	Optional bool   `json:"optional"`
}

// StartTaskBody is the closed sum type carried over the wire to start a
// task on an agent queue (spec §6). Exactly one of the typed fields is
// non-nil, selected by Type.
type StartTaskBody struct {
	Type            TaskType             `json:"type"`
	DeploySoftware  *DeploySoftwareBody  `json:"deploy_software,omitempty"`
	DownloadFile    *DownloadFileBody    `json:"download_file,omitempty"`
	ExecuteUsecase  *ExecuteUsecaseBody  `json:"execute_usecase,omitempty"`
	ExecuteScript   *ExecuteScriptBody   `json:"execute_script,omitempty"`
	UploadFile      *UploadFileBody      `json:"upload_file,omitempty"`
	CollectOutput   *CollectOutputBody   `json:"collect_output,omitempty"`
}

// TaskControlBody is the wire payload for a Cancel/Pause/Resume signal
// sent to an already-dispatched task's queue topic, as opposed to the
// fresh StartTaskBody send that begins it.
type TaskControlBody struct {
	TaskID  string   `json:"task_id"`
	Type    TaskType `json:"type"`
	Command string   `json:"command"`
}

// TaskUsedResource is the final resource-consumption report attached to a
// terminal task, reported back by the executing agent.
type TaskUsedResource struct {
	CPU       float64   `json:"cpu"`
	AvgMemory uint64    `json:"avg_memory"`
	MaxMemory uint64    `json:"max_memory"`
	Storage   uint64    `json:"storage"`
	WallTime  float64   `json:"wall_time"`
	CPUTime   float64   `json:"cpu_time"`
	Node      string    `json:"node"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// TaskResult is the terminal report an agent posts back for a task it was
// assigned, per spec §6's wire schema.
type TaskResult struct {
	TaskID       string            `json:"task_id"`
	Status       TaskStatus        `json:"status"`
	Message      string            `json:"message,omitempty"`
	UsedResource *TaskUsedResource `json:"used_resource,omitempty"`
}

// Task is one unit of agent-executed work belonging to a NodeInstance.
// A node's tasks run in the fixed order assembled by the usecase compiler.
type Task struct {
	ID             string     `gorm:"primaryKey;size:64" json:"id"`
	NodeInstanceID string     `gorm:"size:64;index" json:"node_instance_id"`
	Type           TaskType   `gorm:"size:32" json:"type"`
	BodyJSON       string     `gorm:"type:jsonb;column:body" json:"-"`
	Body           StartTaskBody `gorm:"-" json:"body"`
	QueueTopic     string     `gorm:"size:128" json:"queue_topic"`
	Status         TaskStatus `gorm:"size:32;index" json:"status"`
	Message        string     `json:"message,omitempty"`
	UsedResources  *TaskUsedResource `gorm:"-" json:"used_resources,omitempty"`
	UsedResourcesJSON string  `gorm:"type:jsonb;column:used_resources" json:"-"`
	LastModified   time.Time  `json:"last_modified"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TableName pins the GORM table name independent of struct renames.
func (Task) TableName() string {
	return "tasks"
}

// BeforeSave serializes Body/UsedResources into their jsonb columns.
func (t *Task) BeforeSave() error {
	b, err := json.Marshal(t.Body)
	if err != nil {
		return err
	}
	t.BodyJSON = string(b)
	if t.UsedResources != nil {
		r, err := json.Marshal(t.UsedResources)
		if err != nil {
			return err
		}
		t.UsedResourcesJSON = string(r)
	}
	return nil
}

// AfterFind deserializes the jsonb-backed columns back into their typed
// fields after a row load.
func (t *Task) AfterFind() error {
	if t.BodyJSON != "" {
		if err := json.Unmarshal([]byte(t.BodyJSON), &t.Body); err != nil {
			return err
		}
	}
	if t.UsedResourcesJSON != "" {
		t.UsedResources = &TaskUsedResource{}
		if err := json.Unmarshal([]byte(t.UsedResourcesJSON), t.UsedResources); err != nil {
			return err
		}
	}
	return nil
}
